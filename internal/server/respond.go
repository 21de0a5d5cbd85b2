package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"taskboard/store"
)

func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, statusCode int, msg string) {
	writeJSON(w, statusCode, map[string]any{"error": msg})
}

// writeStoreError maps store errors to response codes: known sentinels
// become 404/409, everything else surfaces as 500 with the underlying
// message.
func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, "Task not found")
	case errors.Is(err, store.ErrCategoryNotFound):
		writeError(w, http.StatusNotFound, "Category not found")
	case errors.Is(err, store.ErrStatusNotFound):
		writeError(w, http.StatusNotFound, "Status not found")
	case errors.Is(err, store.ErrTaskExists):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.log.Error().Err(err).Msg("store operation failed")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
