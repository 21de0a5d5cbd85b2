package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"taskboard/store"
)

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var filter store.TaskFilter

	if v := q.Get("category"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid category")
			return
		}
		filter.CategoryID = &id
	}

	if v := q.Get("status"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		filter.StatusID = &id
	}

	filter.Search = q.Get("search")

	if v := q.Get("done"); v != "" {
		done, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid done")
			return
		}
		filter.Done = &done
	}

	if v := q.Get("includeDemo"); v != "" {
		include, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid includeDemo")
			return
		}
		filter.IncludeDemo = include
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	tasks, err := s.store.ListTasks(ctx, filter)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	task, err := s.store.GetTask(ctx, r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var in createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := s.validate.Struct(in); err != nil {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	nt := store.NewTask{
		ID:          in.ID,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		StatusID:    in.StatusID,
		Notes:       in.Notes,
		Priority:    in.Priority,
	}
	if err := s.store.CreateTask(ctx, nt); err != nil {
		s.writeStoreError(w, err)
		return
	}

	task, err := s.store.GetTask(ctx, in.ID)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func taskPatchFromRequest(in updateTaskRequest) store.TaskPatch {
	return store.TaskPatch{
		Description:  in.Description,
		CategoryID:   in.CategoryID,
		StatusID:     in.StatusID,
		IsDone:       in.IsDone,
		Notes:        in.Notes,
		Priority:     in.Priority,
		DisplayOrder: in.DisplayOrder,
	}
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var in updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	if err := s.store.UpdateTask(ctx, id, taskPatchFromRequest(in)); err != nil {
		s.writeStoreError(w, err)
		return
	}

	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	if err := s.store.DeleteTask(ctx, id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Task %s deleted successfully", id),
	})
}

// handleBulkUpdateTasks applies a batch of partial updates. Items succeed or
// fail independently; there is no atomicity across the batch and results
// are reported per item.
func (s *Server) handleBulkUpdateTasks(w http.ResponseWriter, r *http.Request) {
	var in []bulkTaskUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Expected an array of tasks")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	results := make([]bulkUpdateResult, 0, len(in))
	for _, item := range in {
		if item.ID == "" {
			results = append(results, bulkUpdateResult{Success: false, Error: "Missing task ID"})
			continue
		}

		if err := s.store.UpdateTask(ctx, item.ID, taskPatchFromRequest(item.updateTaskRequest)); err != nil {
			results = append(results, bulkUpdateResult{ID: item.ID, Success: false, Error: err.Error()})
			continue
		}
		results = append(results, bulkUpdateResult{ID: item.ID, Success: true})
	}

	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}
