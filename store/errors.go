package store

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by store operations. Callers map these to HTTP
// status codes; everything else is a driver failure.
var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrTaskExists       = errors.New("task already exists")
	ErrCategoryNotFound = errors.New("category not found")
	ErrStatusNotFound   = errors.New("status not found")
)

// StoreError represents a failure inside a store operation, carrying the
// operation name and, when relevant, the affected task ID.
type StoreError struct {
	Op     string // operation that failed, e.g. "CreateTask"
	TaskID string // optional: task ID if relevant
	Err    error  // underlying error
}

func (e *StoreError) Error() string {
	if e.TaskID != "" {
		return fmt.Sprintf("store %s failed for task %s: %v", e.Op, e.TaskID, e.Err)
	}
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
