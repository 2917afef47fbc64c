package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Offline    bool // use the built-in roster instead of the catalog
}

// NewRootCommand creates the root command for the pokeduel server.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "pokeduel",
		Short:         "Pokeduel - swipe and tournament rounds over a Pokemon roster",
		Long:          "Serves the swipe and tournament games and a small to-do list over HTTP, keeping every game as one JSON document.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a YAML config file (default $POKEDUEL_CONFIG)")
	cmd.PersistentFlags().BoolVar(&opts.Offline, "offline", false, "use the built-in roster instead of fetching the catalog")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewRosterCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))

	return cmd
}
