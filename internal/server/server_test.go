package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/store"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	return New(st, zerolog.Nop(), 5*time.Second).Handler()
}

// do issues a request against the handler and decodes the JSON response
// into out when out is non-nil.
func do(t *testing.T, h http.Handler, method, path string, body, out any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if out != nil {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(out),
			"response body: %s", rec.Body.String())
	}
	return rec
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t)

	var body map[string]any
	rec := do(t, h, http.MethodGet, "/api/health", nil, &body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestTaskLifecycle(t *testing.T) {
	h := newTestHandler(t)

	// Custom category and status.
	var cat store.Category
	rec := do(t, h, http.MethodPost, "/api/categories",
		map[string]any{"name": "Ops", "color": "#123456", "icon": "wrench"}, &cat)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Ops", cat.Name)

	var st store.Status
	rec = do(t, h, http.MethodPost, "/api/statuses",
		map[string]any{"name": "Open", "color": "#654321"}, &st)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Create a task referencing both.
	var task store.Task
	rec = do(t, h, http.MethodPost, "/api/tasks", map[string]any{
		"id":          "T-1",
		"description": "rotate credentials",
		"category_id": cat.ID,
		"status_id":   st.ID,
	}, &task)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Ops", task.CategoryName)
	assert.Equal(t, "Open", task.StatusName)
	assert.Equal(t, 3, task.Priority)

	// Read it back.
	rec = do(t, h, http.MethodGet, "/api/tasks/T-1", nil, &task)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "rotate credentials", task.Description)

	// Move it to a seeded status; history grows to two entries.
	rec = do(t, h, http.MethodPut, "/api/tasks/T-1", map[string]any{"status_id": 1}, &task)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "BACKLOG", task.StatusName)

	var history []store.HistoryEntry
	rec = do(t, h, http.MethodGet, "/api/history/task/T-1", nil, &history)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, history, 2)
	assert.Equal(t, "BACKLOG", history[0].StatusName)
	assert.Equal(t, "Task created", history[1].Notes)

	// Delete removes the task and its history.
	var msg map[string]any
	rec = do(t, h, http.MethodDelete, "/api/tasks/T-1", nil, &msg)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Task T-1 deleted successfully", msg["message"])

	rec = do(t, h, http.MethodGet, "/api/tasks/T-1", nil, &msg)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Task not found", msg["error"])

	history = nil
	rec = do(t, h, http.MethodGet, "/api/history/task/T-1", nil, &history)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, history)
}

func TestCreateTaskValidation(t *testing.T) {
	h := newTestHandler(t)

	var body map[string]any
	rec := do(t, h, http.MethodPost, "/api/tasks",
		map[string]any{"description": "no id"}, &body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required fields", body["error"])

	req := httptest.NewRequest(http.MethodPost, "/api/tasks", bytes.NewReader([]byte("{not json")))
	rec2 := httptest.NewRecorder()
	h.ServeHTTP(rec2, req)
	assert.Equal(t, http.StatusBadRequest, rec2.Code)
}

func TestCreateTaskDuplicateConflict(t *testing.T) {
	h := newTestHandler(t)

	payload := map[string]any{
		"id": "T-1", "description": "x", "category_id": 1, "status_id": 1,
	}

	rec := do(t, h, http.MethodPost, "/api/tasks", payload, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]any
	rec = do(t, h, http.MethodPost, "/api/tasks", payload, &body)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NotEmpty(t, body["error"])
}

func TestListTasksQueryValidation(t *testing.T) {
	h := newTestHandler(t)

	var body map[string]any
	rec := do(t, h, http.MethodGet, "/api/tasks?category=abc", nil, &body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/tasks?done=maybe", nil, &body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListTasksFiltering(t *testing.T) {
	h := newTestHandler(t)

	for i := 1; i <= 3; i++ {
		rec := do(t, h, http.MethodPost, "/api/tasks", map[string]any{
			"id":          fmt.Sprintf("T-%d", i),
			"description": fmt.Sprintf("task %d", i),
			"category_id": i,
			"status_id":   1,
		}, nil)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	var tasks []store.Task
	rec := do(t, h, http.MethodGet, "/api/tasks", nil, &tasks)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, tasks, 3)

	tasks = nil
	rec = do(t, h, http.MethodGet, "/api/tasks?category=2", nil, &tasks)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, tasks, 1)
	assert.Equal(t, "T-2", tasks[0].ID)

	tasks = nil
	rec = do(t, h, http.MethodGet, "/api/tasks?search=task+3", nil, &tasks)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, tasks, 1)
	assert.Equal(t, "T-3", tasks[0].ID)
}

func TestBulkUpdateTasks(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/api/tasks", map[string]any{
		"id": "T-1", "description": "x", "category_id": 1, "status_id": 1,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Results []bulkUpdateResult `json:"results"`
	}
	rec = do(t, h, http.MethodPut, "/api/tasks/bulk", []map[string]any{
		{"id": "T-1", "priority": 1},
		{"priority": 2},
		{"id": "missing", "priority": 3},
	}, &body)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body.Results, 3)

	assert.True(t, body.Results[0].Success)
	assert.Equal(t, "T-1", body.Results[0].ID)

	assert.False(t, body.Results[1].Success)
	assert.Equal(t, "Missing task ID", body.Results[1].Error)

	assert.False(t, body.Results[2].Success)
	assert.NotEmpty(t, body.Results[2].Error)

	var task store.Task
	rec = do(t, h, http.MethodGet, "/api/tasks/T-1", nil, &task)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, task.Priority)
}

func TestBulkUpdateRejectsNonArray(t *testing.T) {
	h := newTestHandler(t)

	var body map[string]any
	rec := do(t, h, http.MethodPut, "/api/tasks/bulk",
		map[string]any{"id": "T-1"}, &body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Expected an array of tasks", body["error"])
}

func TestCategoryCRUDAndGuard(t *testing.T) {
	h := newTestHandler(t)

	var categories []store.Category
	rec := do(t, h, http.MethodGet, "/api/categories", nil, &categories)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, categories, 6)

	var cat store.Category
	rec = do(t, h, http.MethodPost, "/api/categories", map[string]any{"name": "Ops"}, &cat)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodPut, fmt.Sprintf("/api/categories/%d", cat.ID),
		map[string]any{"color": "#ff0000"}, &cat)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "#ff0000", cat.Color)
	assert.Equal(t, "Ops", cat.Name)

	// A referencing task blocks deletion.
	rec = do(t, h, http.MethodPost, "/api/tasks", map[string]any{
		"id": "T-1", "description": "x", "category_id": cat.ID, "status_id": 1,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]any
	rec = do(t, h, http.MethodDelete, fmt.Sprintf("/api/categories/%d", cat.ID), nil, &body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cannot delete: category is used by 1 tasks", body["error"])

	rec = do(t, h, http.MethodDelete, "/api/tasks/T-1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodDelete, fmt.Sprintf("/api/categories/%d", cat.ID), nil, &body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Category deleted successfully", body["message"])

	rec = do(t, h, http.MethodGet, fmt.Sprintf("/api/categories/%d", cat.ID), nil, &body)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateCategoryRequiresName(t *testing.T) {
	h := newTestHandler(t)

	var body map[string]any
	rec := do(t, h, http.MethodPost, "/api/categories", map[string]any{"color": "#fff"}, &body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Category name is required", body["error"])
}

func TestStatusCRUDAndGuard(t *testing.T) {
	h := newTestHandler(t)

	var statuses []store.Status
	rec := do(t, h, http.MethodGet, "/api/statuses", nil, &statuses)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, statuses, 4)

	var st store.Status
	rec = do(t, h, http.MethodPost, "/api/statuses", map[string]any{"name": "DONE"}, &st)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/tasks", map[string]any{
		"id": "T-1", "description": "x", "category_id": 1, "status_id": st.ID,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]any
	rec = do(t, h, http.MethodDelete, fmt.Sprintf("/api/statuses/%d", st.ID), nil, &body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cannot delete: status is used by 1 tasks", body["error"])

	rec = do(t, h, http.MethodDelete, "/api/tasks/T-1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodDelete, fmt.Sprintf("/api/statuses/%d", st.ID), nil, &body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Status deleted successfully", body["message"])
}

func TestDemoEndpoints(t *testing.T) {
	h := newTestHandler(t)

	var body map[string]any
	rec := do(t, h, http.MethodPost, "/api/demo/load", nil, &body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(9), body["inserted"])

	// Demo tasks stay out of the default listing.
	var tasks []store.Task
	rec = do(t, h, http.MethodGet, "/api/tasks", nil, &tasks)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, tasks)

	tasks = nil
	rec = do(t, h, http.MethodGet, "/api/tasks?includeDemo=true", nil, &tasks)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, tasks, 9)

	rec = do(t, h, http.MethodPost, "/api/demo/clear", nil, &body)
	require.Equal(t, http.StatusOK, rec.Code)

	tasks = nil
	rec = do(t, h, http.MethodGet, "/api/tasks?includeDemo=true", nil, &tasks)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, tasks)
}

func TestClearDataKeepsDefaults(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/api/tasks", map[string]any{
		"id": "T-1", "description": "x", "category_id": 1, "status_id": 1,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]any
	rec = do(t, h, http.MethodPost, "/api/data/clear", nil, &body)
	require.Equal(t, http.StatusOK, rec.Code)

	var tasks []store.Task
	rec = do(t, h, http.MethodGet, "/api/tasks?includeDemo=true", nil, &tasks)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, tasks)

	var categories []store.Category
	rec = do(t, h, http.MethodGet, "/api/categories", nil, &categories)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, categories, 6)
}
