package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/DoyleJ11/pokeduel-backend/internal/engine"
	"github.com/DoyleJ11/pokeduel-backend/internal/hub"
	"github.com/DoyleJ11/pokeduel-backend/internal/session"
)

type swipeResponse struct {
	Pokemon        engine.Entity `json:"pokemon"`
	RemainingCount int           `json:"remaining_count"`
	PassedCount    int           `json:"passed_count"`
}

type roundResponse struct {
	Message      string `json:"message"`
	CurrentRound int    `json:"current_round"`
	EntityCount  int    `json:"entity_count"`
}

type chooseRequest struct {
	Choice string `json:"choice"`
}

// game binds the handlers of one hosted game.
type game struct {
	hub  *hub.Hub
	name string
}

// run sends cmd to the game's session. On failure the error response has
// already been written and ok is false.
func (g game) run(w http.ResponseWriter, r *http.Request, cmd engine.Command) (res session.Result, ok bool) {
	sess := g.hub.Session(r.Context(), g.name)
	if sess == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("game %q not found", g.name)})
		return session.Result{}, false
	}
	res = sess.Do(r.Context(), cmd)
	if res.Err != nil {
		writeError(w, res.Err)
		return res, false
	}
	return res, true
}

// Index starts round 1 on first visit and returns the state.
func (g game) Index(w http.ResponseWriter, r *http.Request) {
	res, ok := g.run(w, r, engine.Command{Type: engine.CmdEnsureStarted})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, res.State)
}

func (g game) State(w http.ResponseWriter, r *http.Request) {
	res, ok := g.run(w, r, engine.Command{Type: engine.CmdGetState})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, res.State)
}

func (g game) CurrentPokemon(w http.ResponseWriter, r *http.Request) {
	res, ok := g.run(w, r, engine.Command{Type: engine.CmdPeek})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, res.Outcome.Entity)
}

func (g game) NextPokemon(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, fmt.Errorf("%w: index must be an integer", engine.ErrInvalidArgument))
		return
	}
	res, ok := g.run(w, r, engine.Command{Type: engine.CmdPeekAt, Index: index})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, res.Outcome.Entity)
}

func (g game) Pass(w http.ResponseWriter, r *http.Request) {
	g.swipe(w, r, engine.CmdPass)
}

func (g game) Smash(w http.ResponseWriter, r *http.Request) {
	g.swipe(w, r, engine.CmdEliminate)
}

func (g game) swipe(w http.ResponseWriter, r *http.Request, cmd engine.CommandType) {
	res, ok := g.run(w, r, engine.Command{Type: cmd})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, swipeResponse{
		Pokemon:        *res.Outcome.Entity,
		RemainingCount: len(res.State.Remaining),
		PassedCount:    len(res.State.SetAside),
	})
}

func (g game) CurrentMatch(w http.ResponseWriter, r *http.Request) {
	res, ok := g.run(w, r, engine.Command{Type: engine.CmdCurrentMatch})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, res.Outcome.Match)
}

func (g game) Choose(w http.ResponseWriter, r *http.Request) {
	var req chooseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body", engine.ErrInvalidArgument))
		return
	}
	res, ok := g.run(w, r, engine.Command{Type: engine.CmdChoose, Side: engine.Side(req.Choice)})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, res.Outcome.Choice)
}

func (g game) NextRound(w http.ResponseWriter, r *http.Request) {
	res, ok := g.run(w, r, engine.Command{Type: engine.CmdAdvanceRound})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, roundResponse{
		Message:      fmt.Sprintf("round %d started", res.State.CurrentRound),
		CurrentRound: res.State.CurrentRound,
		EntityCount:  playing(res.State),
	})
}

func (g game) Reset(w http.ResponseWriter, r *http.Request) {
	res, ok := g.run(w, r, engine.Command{Type: engine.CmdReset})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, roundResponse{
		Message:      "game reset",
		CurrentRound: res.State.CurrentRound,
		EntityCount:  playing(res.State),
	})
}

func playing(s engine.State) int {
	if s.Variant == engine.VariantBracket {
		return len(s.Active)
	}
	return len(s.Remaining)
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
