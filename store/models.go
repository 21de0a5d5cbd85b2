package store

import (
	"database/sql"
	"time"
)

// Task is a single tracked task. CategoryName and StatusName are joined in
// from the referenced rows on reads and are empty on tasks whose references
// are unset or dangling.
type Task struct {
	ID           string    `json:"id"`
	Description  string    `json:"description"`
	CategoryID   *int64    `json:"category_id"`
	StatusID     *int64    `json:"status_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	IsDone       bool      `json:"is_done"`
	Notes        string    `json:"notes"`
	Priority     int       `json:"priority"`
	DisplayOrder int64     `json:"display_order"`
	IsDemo       bool      `json:"is_demo"`
	CategoryName string    `json:"category_name"`
	StatusName   string    `json:"status_name"`
}

// Category groups tasks for presentation. Color and icon are display hints.
type Category struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Color        string `json:"color"`
	Icon         string `json:"icon"`
	DisplayOrder int64  `json:"display_order"`
}

// Status is a workflow state tasks move through.
type Status struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Color        string `json:"color"`
	DisplayOrder int64  `json:"display_order"`
}

// HistoryEntry is one row of a task's append-only status audit trail.
// StatusName and StatusColor are joined in from the snapshotted status.
type HistoryEntry struct {
	ID          int64     `json:"id"`
	TaskID      string    `json:"task_id"`
	StatusID    *int64    `json:"status_id"`
	Timestamp   time.Time `json:"timestamp"`
	Notes       string    `json:"notes"`
	StatusName  string    `json:"status_name"`
	StatusColor string    `json:"status_color"`
}

// taskRow is the scan target for task queries. Timestamps are stored as Unix
// seconds; nullable columns scan through sql.Null types.
type taskRow struct {
	ID           string         `db:"id"`
	Description  string         `db:"description"`
	CategoryID   sql.NullInt64  `db:"category_id"`
	StatusID     sql.NullInt64  `db:"status_id"`
	CreatedAt    sql.NullInt64  `db:"created_at"`
	UpdatedAt    sql.NullInt64  `db:"updated_at"`
	IsDone       bool           `db:"is_done"`
	Notes        sql.NullString `db:"notes"`
	Priority     int            `db:"priority"`
	DisplayOrder sql.NullInt64  `db:"display_order"`
	IsDemo       bool           `db:"is_demo"`
	CategoryName sql.NullString `db:"category_name"`
	StatusName   sql.NullString `db:"status_name"`
}

func (r taskRow) toTask() Task {
	t := Task{
		ID:           r.ID,
		Description:  r.Description,
		IsDone:       r.IsDone,
		Priority:     r.Priority,
		DisplayOrder: r.DisplayOrder.Int64,
		IsDemo:       r.IsDemo,
		Notes:        r.Notes.String,
		CategoryName: r.CategoryName.String,
		StatusName:   r.StatusName.String,
	}
	if r.CategoryID.Valid {
		t.CategoryID = &r.CategoryID.Int64
	}
	if r.StatusID.Valid {
		t.StatusID = &r.StatusID.Int64
	}
	if r.CreatedAt.Valid {
		t.CreatedAt = time.Unix(r.CreatedAt.Int64, 0)
	}
	if r.UpdatedAt.Valid {
		t.UpdatedAt = time.Unix(r.UpdatedAt.Int64, 0)
	}
	return t
}

type categoryRow struct {
	ID           int64          `db:"id"`
	Name         string         `db:"name"`
	Color        sql.NullString `db:"color"`
	Icon         sql.NullString `db:"icon"`
	DisplayOrder sql.NullInt64  `db:"display_order"`
}

func (r categoryRow) toCategory() Category {
	return Category{
		ID:           r.ID,
		Name:         r.Name,
		Color:        r.Color.String,
		Icon:         r.Icon.String,
		DisplayOrder: r.DisplayOrder.Int64,
	}
}

type statusRow struct {
	ID           int64          `db:"id"`
	Name         string         `db:"name"`
	Color        sql.NullString `db:"color"`
	DisplayOrder sql.NullInt64  `db:"display_order"`
}

func (r statusRow) toStatus() Status {
	return Status{
		ID:           r.ID,
		Name:         r.Name,
		Color:        r.Color.String,
		DisplayOrder: r.DisplayOrder.Int64,
	}
}

type historyRow struct {
	ID          int64          `db:"id"`
	TaskID      string         `db:"task_id"`
	StatusID    sql.NullInt64  `db:"status_id"`
	Timestamp   sql.NullInt64  `db:"timestamp"`
	Notes       sql.NullString `db:"notes"`
	StatusName  sql.NullString `db:"status_name"`
	StatusColor sql.NullString `db:"status_color"`
}

func (r historyRow) toEntry() HistoryEntry {
	e := HistoryEntry{
		ID:          r.ID,
		TaskID:      r.TaskID,
		Notes:       r.Notes.String,
		StatusName:  r.StatusName.String,
		StatusColor: r.StatusColor.String,
	}
	if r.StatusID.Valid {
		e.StatusID = &r.StatusID.Int64
	}
	if r.Timestamp.Valid {
		e.Timestamp = time.Unix(r.Timestamp.Int64, 0)
	}
	return e
}

// nullString converts a string to sql.NullString, treating "" as NULL.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullInt64 converts an optional int64 to sql.NullInt64.
func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
