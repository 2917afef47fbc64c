package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// NewRosterCommand creates the roster command.
func NewRosterCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Print the roster a new game would start with",
		Long: `Fetch the roster from the catalog and print it as JSON. When the
catalog cannot be reached the built-in list is printed instead.

Example:
  pokeduel roster
  pokeduel roster --offline`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := newApp(rootOpts)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := a.Close(); err == nil {
					err = closeErr
				}
			}()

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(a.roster.Fetch(cmd.Context()))
		},
	}
	return cmd
}
