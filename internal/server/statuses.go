package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"taskboard/store"
)

func (s *Server) handleListStatuses(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	statuses, err := s.store.ListStatuses(ctx)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}

func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	status, err := s.store.GetStatus(ctx, id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleCreateStatus(w http.ResponseWriter, r *http.Request) {
	var in createStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := s.validate.Struct(in); err != nil {
		writeError(w, http.StatusBadRequest, "Status name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	id, err := s.store.CreateStatus(ctx, in.Name, in.Color)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	status, err := s.store.GetStatus(ctx, id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, status)
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var in updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	patch := store.StatusPatch{
		Name:         in.Name,
		Color:        in.Color,
		DisplayOrder: in.DisplayOrder,
	}
	if err := s.store.UpdateStatus(ctx, id, patch); err != nil {
		s.writeStoreError(w, err)
		return
	}

	status, err := s.store.GetStatus(ctx, id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// handleDeleteStatus enforces the same referential guard as categories.
func (s *Server) handleDeleteStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	count, err := s.store.TaskCountByStatus(ctx, id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	if count > 0 {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Cannot delete: status is used by %d tasks", count))
		return
	}

	if err := s.store.DeleteStatus(ctx, id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Status deleted successfully"})
}
