package server

import (
	"context"
	"net/http"
)

func (s *Server) handleTaskHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	entries, err := s.store.TaskHistory(ctx, r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
