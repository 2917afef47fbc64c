package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/DoyleJ11/pokeduel-backend/internal/engine"
	"github.com/DoyleJ11/pokeduel-backend/internal/tasks"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrNotFound),
		errors.Is(err, engine.ErrWrongVariant),
		errors.Is(err, tasks.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrInvalidArgument),
		errors.Is(err, engine.ErrInvalidState),
		errors.Is(err, tasks.ErrInvalidTitle):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
