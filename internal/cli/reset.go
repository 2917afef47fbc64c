package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DoyleJ11/pokeduel-backend/internal/engine"
	"github.com/DoyleJ11/pokeduel-backend/internal/session"
)

// ResetOptions holds flags for the reset command.
type ResetOptions struct {
	*RootOptions
	Game string
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset one game's stored state",
		Long: `Reset a game to round 1 with a fresh roster, writing the document
directly to storage. Do not run it against a store a live server is using.

Example:
  pokeduel reset --game tournament`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := newApp(opts.RootOptions)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := a.Close(); err == nil {
					err = closeErr
				}
			}()

			eng, err := a.engineFor(opts.Game)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			sess := session.New(ctx, session.Config{
				Name:   opts.Game,
				Engine: eng,
				Store:  a.store,
				Logger: a.log,
			})
			res := sess.Do(ctx, engine.Command{Type: engine.CmdReset})
			if res.Err != nil {
				return fmt.Errorf("reset %s: %w", opts.Game, res.Err)
			}

			n := len(res.State.Remaining)
			if eng.Variant() == engine.VariantBracket {
				n = len(res.State.Active)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s reset to round %d with %d pokemon\n", opts.Game, res.State.CurrentRound, n)
			return err
		},
	}

	cmd.Flags().StringVar(&opts.Game, "game", "", "game to reset (required)")
	_ = cmd.MarkFlagRequired("game")

	return cmd
}
