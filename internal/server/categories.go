package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"taskboard/store"
)

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	category, err := s.store.GetCategory(ctx, id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var in createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := s.validate.Struct(in); err != nil {
		writeError(w, http.StatusBadRequest, "Category name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	id, err := s.store.CreateCategory(ctx, in.Name, in.Color, in.Icon)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	category, err := s.store.GetCategory(ctx, id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var in updateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	patch := store.CategoryPatch{
		Name:         in.Name,
		Color:        in.Color,
		Icon:         in.Icon,
		DisplayOrder: in.DisplayOrder,
	}
	if err := s.store.UpdateCategory(ctx, id, patch); err != nil {
		s.writeStoreError(w, err)
		return
	}

	category, err := s.store.GetCategory(ctx, id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// handleDeleteCategory enforces the referential guard: a category with
// referencing tasks is not deletable, and the blocker count is reported.
func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	count, err := s.store.TaskCountByCategory(ctx, id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	if count > 0 {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Cannot delete: category is used by %d tasks", count))
		return
	}

	if err := s.store.DeleteCategory(ctx, id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Category deleted successfully"})
}
