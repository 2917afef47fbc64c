package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/DoyleJ11/pokeduel-backend/internal/httpapi"
	"github.com/DoyleJ11/pokeduel-backend/internal/hub"
	"github.com/DoyleJ11/pokeduel-backend/internal/tasks"
)

const shutdownTimeout = 10 * time.Second

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server hosting every configured game and the to-do list.

Example:
  pokeduel serve --addr :9000
  pokeduel serve --config ./pokeduel.yaml --offline`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides config)")

	return cmd
}

func runServe(ctx context.Context, opts *ServeOptions) (err error) {
	a, err := newApp(opts.RootOptions)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, a.Close()) }()

	addr := a.cfg.Addr
	if opts.Addr != "" {
		addr = opts.Addr
	}

	hubCtx, cancelHub := context.WithCancel(context.Background())
	defer cancelHub()
	h := hub.NewHub(hubCtx, a.sessionFactory())

	svc, err := tasks.New(ctx, a.store, tasks.DefaultKey, tasks.WithLogger(a.log))
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr: addr,
		Handler: httpapi.SetupRoutes(httpapi.Deps{
			Hub:         h,
			Tasks:       svc,
			Games:       a.cfg.GameNames(),
			DefaultGame: a.cfg.DefaultGame,
			Logger:      a.log,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("listening",
			zap.String("addr", addr),
			zap.String("storage", string(a.cfg.Backend)),
			zap.Strings("games", a.cfg.GameNames()),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	shutdownErr := srv.Shutdown(shutdownCtx)
	h.Inbox() <- hub.ShutdownHub{}
	return shutdownErr
}
