package server

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"taskboard/store"
)

// Server wires the REST API to the store. Handlers are thin pass-throughs:
// parameter parsing, a store call, and a status code.
type Server struct {
	store    *store.Store
	log      zerolog.Logger
	timeout  time.Duration
	validate *validator.Validate
}

// New creates a Server. timeout bounds the store work done per request.
func New(st *store.Store, log zerolog.Logger, timeout time.Duration) *Server {
	return &Server{
		store:    st,
		log:      log.With().Str("component", "server").Logger(),
		timeout:  timeout,
		validate: validator.New(),
	}
}

// Handler returns the full route table wrapped with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)

	mux.HandleFunc("GET /api/tasks", s.handleListTasks)
	mux.HandleFunc("POST /api/tasks", s.handleCreateTask)
	mux.HandleFunc("PUT /api/tasks/bulk", s.handleBulkUpdateTasks)
	mux.HandleFunc("GET /api/tasks/{id}", s.handleGetTask)
	mux.HandleFunc("PUT /api/tasks/{id}", s.handleUpdateTask)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.handleDeleteTask)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("GET /api/categories/{id}", s.handleGetCategory)
	mux.HandleFunc("PUT /api/categories/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("GET /api/statuses", s.handleListStatuses)
	mux.HandleFunc("POST /api/statuses", s.handleCreateStatus)
	mux.HandleFunc("GET /api/statuses/{id}", s.handleGetStatus)
	mux.HandleFunc("PUT /api/statuses/{id}", s.handleUpdateStatus)
	mux.HandleFunc("DELETE /api/statuses/{id}", s.handleDeleteStatus)

	mux.HandleFunc("GET /api/history/task/{id}", s.handleTaskHistory)

	mux.HandleFunc("POST /api/demo/load", s.handleLoadDemo)
	mux.HandleFunc("POST /api/demo/clear", s.handleClearDemo)
	mux.HandleFunc("POST /api/data/clear", s.handleClearData)

	return s.requestLogger(mux)
}
