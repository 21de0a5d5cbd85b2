package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
)

// StatusPatch is a partial update for a status: nil fields are left
// untouched.
type StatusPatch struct {
	Name         *string
	Color        *string
	DisplayOrder *int64
}

func (p StatusPatch) empty() bool {
	return p.Name == nil && p.Color == nil && p.DisplayOrder == nil
}

// ListStatuses returns all statuses ordered by display_order then name.
func (s *Store) ListStatuses(ctx context.Context) ([]Status, error) {
	const query = `
		SELECT id, name, color, display_order
		FROM statuses
		ORDER BY display_order ASC, name ASC
	`

	var rows []statusRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, &StoreError{Op: "ListStatuses", Err: err}
	}

	statuses := make([]Status, 0, len(rows))
	for _, r := range rows {
		statuses = append(statuses, r.toStatus())
	}
	return statuses, nil
}

// GetStatus returns the status with the given id, or ErrStatusNotFound.
func (s *Store) GetStatus(ctx context.Context, id int64) (Status, error) {
	const query = `SELECT id, name, color, display_order FROM statuses WHERE id = ?`

	var row statusRow
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Status{}, ErrStatusNotFound
		}
		return Status{}, &StoreError{Op: "GetStatus", Err: err}
	}
	return row.toStatus(), nil
}

// CreateStatus inserts a status with display_order = current max + 10 and
// returns its generated id.
func (s *Store) CreateStatus(ctx context.Context, name, color string) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, &StoreError{Op: "CreateStatus", Err: err}
	}
	defer tx.Rollback()

	order, err := nextDisplayOrder(tx, "statuses")
	if err != nil {
		return 0, &StoreError{Op: "CreateStatus", Err: err}
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO statuses (name, color, display_order) VALUES (?, ?, ?)",
		name, nullString(color), order,
	)
	if err != nil {
		return 0, &StoreError{Op: "CreateStatus", Err: err}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, &StoreError{Op: "CreateStatus", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return 0, &StoreError{Op: "CreateStatus", Err: err}
	}
	return id, nil
}

// UpdateStatus applies a partial update. An empty patch is a no-op.
func (s *Store) UpdateStatus(ctx context.Context, id int64, patch StatusPatch) error {
	if patch.empty() {
		return nil
	}

	b := squirrel.Update("statuses")
	if patch.Name != nil {
		b = b.Set("name", *patch.Name)
	}
	if patch.Color != nil {
		b = b.Set("color", *patch.Color)
	}
	if patch.DisplayOrder != nil {
		b = b.Set("display_order", *patch.DisplayOrder)
	}

	query, args, err := b.Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return &StoreError{Op: "UpdateStatus", Err: err}
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return &StoreError{Op: "UpdateStatus", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return &StoreError{Op: "UpdateStatus", Err: err}
	}
	if affected == 0 {
		return ErrStatusNotFound
	}
	return nil
}

// DeleteStatus removes a status unconditionally. The referencing-task guard
// is the caller's responsibility (see TaskCountByStatus).
func (s *Store) DeleteStatus(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM statuses WHERE id = ?", id)
	if err != nil {
		return &StoreError{Op: "DeleteStatus", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return &StoreError{Op: "DeleteStatus", Err: err}
	}
	if affected == 0 {
		return ErrStatusNotFound
	}
	return nil
}
