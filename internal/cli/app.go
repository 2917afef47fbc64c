package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/DoyleJ11/pokeduel-backend/internal/config"
	"github.com/DoyleJ11/pokeduel-backend/internal/engine"
	"github.com/DoyleJ11/pokeduel-backend/internal/hub"
	"github.com/DoyleJ11/pokeduel-backend/internal/logging"
	"github.com/DoyleJ11/pokeduel-backend/internal/roster"
	"github.com/DoyleJ11/pokeduel-backend/internal/session"
	"github.com/DoyleJ11/pokeduel-backend/internal/storage"
)

// app is the wiring shared by every command.
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	store  storage.DocumentStore
	roster engine.RosterSource
	client *roster.Client
}

func newApp(opts *RootOptions) (*app, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(cfg.StorageOptions())
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("open %s storage: %w", cfg.Backend, err)
	}

	client := roster.NewClient(roster.Config{
		BaseURL: cfg.Roster.BaseURL,
		Size:    cfg.Roster.Size,
		Timeout: cfg.Roster.Timeout,
		Shiny:   cfg.Roster.Shiny,
	}, log)

	a := &app{cfg: cfg, log: log, store: store, client: client, roster: client}
	if opts.Offline {
		a.roster = builtinRoster{client}
	}
	return a, nil
}

// builtinRoster serves the fallback table without touching the network.
type builtinRoster struct{ c *roster.Client }

func (b builtinRoster) Fetch(ctx context.Context) []engine.Entity { return b.c.Fallback() }

// engineFor returns the engine of a configured game.
func (a *app) engineFor(name string) (*engine.Engine, error) {
	raw, ok := a.cfg.Games[name]
	if !ok {
		return nil, fmt.Errorf("unknown game %q (configured: %v)", name, a.cfg.GameNames())
	}
	v, err := engine.ParseVariant(raw)
	if err != nil {
		return nil, err
	}
	return engine.New(v, a.roster), nil
}

// sessionFactory builds the hub's sessions; each game is stored under its
// own name.
func (a *app) sessionFactory() hub.Factory {
	return func(ctx context.Context, name string) *session.Session {
		eng, err := a.engineFor(name)
		if err != nil {
			return nil
		}
		return session.New(ctx, session.Config{
			Name:   name,
			Key:    name,
			Engine: eng,
			Store:  a.store,
			Logger: a.log,
		})
	}
}

func (a *app) Close() error {
	// Sync fails on stderr when it is a terminal; nothing to report there.
	_ = a.log.Sync()
	return a.store.Close()
}
