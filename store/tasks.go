package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
)

// taskColumns are the columns selected for every task read, including the
// joined category and status names.
var taskColumns = []string{
	"t.id", "t.description", "t.category_id", "t.status_id",
	"t.created_at", "t.updated_at", "t.is_done", "t.notes",
	"t.priority", "t.display_order", "t.is_demo",
	"c.name AS category_name", "s.name AS status_name",
}

func taskSelect() squirrel.SelectBuilder {
	return squirrel.Select(taskColumns...).
		From("tasks t").
		LeftJoin("categories c ON t.category_id = c.id").
		LeftJoin("statuses s ON t.status_id = s.id")
}

// TaskFilter narrows ListTasks results. Zero-value fields are ignored.
// Demo tasks are excluded unless IncludeDemo is set.
type TaskFilter struct {
	CategoryID  *int64
	StatusID    *int64
	Search      string
	Done        *bool
	IncludeDemo bool
}

// NewTask carries the caller-supplied fields for task creation. The ID is
// minted by the caller and must not collide with an existing task.
type NewTask struct {
	ID          string
	Description string
	CategoryID  *int64
	StatusID    *int64
	Notes       string
	Priority    *int
	IsDemo      bool
}

// TaskPatch is a partial update: nil fields are left untouched.
type TaskPatch struct {
	Description  *string
	CategoryID   *int64
	StatusID     *int64
	IsDone       *bool
	Notes        *string
	Priority     *int
	DisplayOrder *int64
}

func (p TaskPatch) empty() bool {
	return p.Description == nil && p.CategoryID == nil && p.StatusID == nil &&
		p.IsDone == nil && p.Notes == nil && p.Priority == nil && p.DisplayOrder == nil
}

// ListTasks returns tasks matching the filter, ordered by display_order
// then id. Search matches id and description as a case-insensitive
// substring.
func (s *Store) ListTasks(ctx context.Context, filter TaskFilter) ([]Task, error) {
	b := taskSelect()

	if filter.CategoryID != nil {
		b = b.Where(squirrel.Eq{"t.category_id": *filter.CategoryID})
	}
	if filter.StatusID != nil {
		b = b.Where(squirrel.Eq{"t.status_id": *filter.StatusID})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		b = b.Where(squirrel.Expr("(t.id LIKE ? OR t.description LIKE ?)", pattern, pattern))
	}
	if filter.Done != nil {
		b = b.Where(squirrel.Eq{"t.is_done": *filter.Done})
	}
	if !filter.IncludeDemo {
		b = b.Where(squirrel.Eq{"t.is_demo": false})
	}

	query, args, err := b.OrderBy("t.display_order ASC", "t.id ASC").ToSql()
	if err != nil {
		return nil, &StoreError{Op: "ListTasks", Err: err}
	}

	var rows []taskRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, &StoreError{Op: "ListTasks", Err: err}
	}

	tasks := make([]Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.toTask())
	}
	return tasks, nil
}

// GetTask returns the task with the given id, or ErrTaskNotFound.
func (s *Store) GetTask(ctx context.Context, id string) (Task, error) {
	query, args, err := taskSelect().Where(squirrel.Eq{"t.id": id}).ToSql()
	if err != nil {
		return Task{}, &StoreError{Op: "GetTask", TaskID: id, Err: err}
	}

	var row taskRow
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Task{}, ErrTaskNotFound
		}
		return Task{}, &StoreError{Op: "GetTask", TaskID: id, Err: err}
	}
	return row.toTask(), nil
}

// CreateTask inserts a new task and its initial history entry in one
// transaction. It fails with ErrTaskExists, leaving the store unchanged,
// when the id is already taken. display_order is assigned as the current
// maximum plus 10.
func (s *Store) CreateTask(ctx context.Context, nt NewTask) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return &StoreError{Op: "CreateTask", TaskID: nt.ID, Err: err}
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM tasks WHERE id = ?)", nt.ID).Scan(&exists)
	if err != nil {
		return &StoreError{Op: "CreateTask", TaskID: nt.ID, Err: err}
	}
	if exists {
		return ErrTaskExists
	}

	order, err := nextDisplayOrder(tx, "tasks")
	if err != nil {
		return &StoreError{Op: "CreateTask", TaskID: nt.ID, Err: err}
	}

	priority := 3
	if nt.Priority != nil {
		priority = *nt.Priority
	}

	now := time.Now().Unix()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO tasks (id, description, category_id, status_id, created_at, updated_at,
		                   is_done, notes, priority, display_order, is_demo)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?, ?, ?)
	`, nt.ID, nt.Description, nullInt64(nt.CategoryID), nullInt64(nt.StatusID),
		now, now, nullString(nt.Notes), priority, order, nt.IsDemo)
	if err != nil {
		return &StoreError{Op: "CreateTask", TaskID: nt.ID, Err: err}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO task_history (task_id, status_id, timestamp, notes)
		VALUES (?, ?, ?, ?)
	`, nt.ID, nullInt64(nt.StatusID), now, "Task created")
	if err != nil {
		return &StoreError{Op: "CreateTask", TaskID: nt.ID, Err: err}
	}

	return tx.Commit()
}

// UpdateTask applies a partial update. Only non-nil patch fields are
// written; updated_at is always refreshed. When the patch changes the
// task's status, exactly one history entry is appended in the same
// transaction, so no update path can skip the audit trail.
func (s *Store) UpdateTask(ctx context.Context, id string, patch TaskPatch) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return &StoreError{Op: "UpdateTask", TaskID: id, Err: err}
	}
	defer tx.Rollback()

	var current sql.NullInt64
	err = tx.QueryRowContext(ctx, "SELECT status_id FROM tasks WHERE id = ?", id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTaskNotFound
	}
	if err != nil {
		return &StoreError{Op: "UpdateTask", TaskID: id, Err: err}
	}

	now := time.Now().Unix()
	b := squirrel.Update("tasks").Set("updated_at", now)
	if patch.Description != nil {
		b = b.Set("description", *patch.Description)
	}
	if patch.CategoryID != nil {
		b = b.Set("category_id", *patch.CategoryID)
	}
	if patch.StatusID != nil {
		b = b.Set("status_id", *patch.StatusID)
	}
	if patch.IsDone != nil {
		b = b.Set("is_done", *patch.IsDone)
	}
	if patch.Notes != nil {
		b = b.Set("notes", *patch.Notes)
	}
	if patch.Priority != nil {
		b = b.Set("priority", *patch.Priority)
	}
	if patch.DisplayOrder != nil {
		b = b.Set("display_order", *patch.DisplayOrder)
	}

	query, args, err := b.Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return &StoreError{Op: "UpdateTask", TaskID: id, Err: err}
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return &StoreError{Op: "UpdateTask", TaskID: id, Err: err}
	}

	statusChanged := patch.StatusID != nil && (!current.Valid || current.Int64 != *patch.StatusID)
	if statusChanged {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO task_history (task_id, status_id, timestamp, notes)
			VALUES (?, ?, ?, NULL)
		`, id, *patch.StatusID, now)
		if err != nil {
			return &StoreError{Op: "UpdateTask", TaskID: id, Err: err}
		}
	}

	return tx.Commit()
}

// DeleteTask removes a task and its history rows in one transaction.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return &StoreError{Op: "DeleteTask", TaskID: id, Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM task_history WHERE task_id = ?", id); err != nil {
		return &StoreError{Op: "DeleteTask", TaskID: id, Err: err}
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return &StoreError{Op: "DeleteTask", TaskID: id, Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return &StoreError{Op: "DeleteTask", TaskID: id, Err: err}
	}
	if affected == 0 {
		return ErrTaskNotFound
	}

	return tx.Commit()
}

// TaskCountByCategory returns the number of tasks referencing a category.
// The HTTP layer uses it as the deletion guard.
func (s *Store) TaskCountByCategory(ctx context.Context, categoryID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks WHERE category_id = ?", categoryID).Scan(&count)
	if err != nil {
		return 0, &StoreError{Op: "TaskCountByCategory", Err: err}
	}
	return count, nil
}

// TaskCountByStatus returns the number of tasks referencing a status.
func (s *Store) TaskCountByStatus(ctx context.Context, statusID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks WHERE status_id = ?", statusID).Scan(&count)
	if err != nil {
		return 0, &StoreError{Op: "TaskCountByStatus", Err: err}
	}
	return count, nil
}
