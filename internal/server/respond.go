package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/claude/replog/internal/models"
	"github.com/claude/replog/internal/storage"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeStoreError maps storage and validation failures onto the error
// taxonomy: field errors inline, business rules as a banner-style message,
// everything else as a backend error.
func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	var fe models.FieldErrors
	switch {
	case errors.As(err, &fe):
		writeJSON(w, http.StatusBadRequest, map[string]any{"fieldErrors": fe})
	case errors.Is(err, models.ErrNoExercises):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.Is(err, models.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	default:
		s.log.Error("storage error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "something went wrong, please try again"})
	}
}
