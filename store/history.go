package store

import (
	"context"
	"time"
)

// AddTaskHistory appends one entry to a task's audit trail. Entries are
// never mutated afterward.
func (s *Store) AddTaskHistory(ctx context.Context, taskID string, statusID *int64, notes string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO task_history (task_id, status_id, timestamp, notes)
		VALUES (?, ?, ?, ?)
	`, taskID, nullInt64(statusID), time.Now().Unix(), nullString(notes))
	if err != nil {
		return &StoreError{Op: "AddTaskHistory", TaskID: taskID, Err: err}
	}
	return nil
}

// TaskHistory returns a task's history entries, most recent first, with the
// snapshotted status name and color joined in.
func (s *Store) TaskHistory(ctx context.Context, taskID string) ([]HistoryEntry, error) {
	const query = `
		SELECT h.id, h.task_id, h.status_id, h.timestamp, h.notes,
		       s.name AS status_name, s.color AS status_color
		FROM task_history h
		LEFT JOIN statuses s ON h.status_id = s.id
		WHERE h.task_id = ?
		ORDER BY h.timestamp DESC, h.id DESC
	`

	var rows []historyRow
	if err := s.db.SelectContext(ctx, &rows, query, taskID); err != nil {
		return nil, &StoreError{Op: "TaskHistory", TaskID: taskID, Err: err}
	}

	entries := make([]HistoryEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.toEntry())
	}
	return entries, nil
}

// DeleteTaskHistory removes all history entries for a task.
func (s *Store) DeleteTaskHistory(ctx context.Context, taskID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM task_history WHERE task_id = ?", taskID); err != nil {
		return &StoreError{Op: "DeleteTaskHistory", TaskID: taskID, Err: err}
	}
	return nil
}
