package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DoyleJ11/pokeduel-backend/internal/hub"
	"github.com/DoyleJ11/pokeduel-backend/internal/tasks"
	"github.com/DoyleJ11/pokeduel-backend/internal/ws"
)

type Deps struct {
	Hub         *hub.Hub
	Tasks       *tasks.Service
	Games       []string // each is served under /{name}
	DefaultGame string   // also served at the root; empty disables
	Logger      *zap.Logger
}

func SetupRoutes(d Deps) http.Handler {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(log.Named("http")))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(d.Hub, log.Named("ws")))

	if d.Tasks != nil {
		r.Route("/api/tasks", func(r chi.Router) {
			r.Get("/", ListTasks(d.Tasks))
			r.Post("/", CreateTask(d.Tasks))
			r.Put("/{id}", UpdateTask(d.Tasks))
			r.Delete("/{id}", DeleteTask(d.Tasks))
		})
	}

	for _, name := range d.Games {
		g := game{hub: d.Hub, name: name}
		r.Route("/"+name, func(r chi.Router) { gameRoutes(r, g) })
	}
	if d.DefaultGame != "" {
		gameRoutes(r, game{hub: d.Hub, name: d.DefaultGame})
	}
	return r
}

// gameRoutes registers every game endpoint; the session rejects the ones
// its variant does not support.
func gameRoutes(r chi.Router, g game) {
	r.Get("/", g.Index)
	r.Get("/api/game-state", g.State)
	r.Get("/api/current-pokemon", g.CurrentPokemon)
	r.Get("/api/next-pokemon/{index}", g.NextPokemon)
	r.Post("/api/pass-pokemon", g.Pass)
	r.Post("/api/smash-pokemon", g.Smash)
	r.Get("/api/current-match", g.CurrentMatch)
	r.Post("/api/choose-pokemon", g.Choose)
	r.Post("/api/next-round", g.NextRound)
	r.Post("/api/reset-game", g.Reset)
}
