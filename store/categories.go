package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
)

// CategoryPatch is a partial update for a category: nil fields are left
// untouched.
type CategoryPatch struct {
	Name         *string
	Color        *string
	Icon         *string
	DisplayOrder *int64
}

func (p CategoryPatch) empty() bool {
	return p.Name == nil && p.Color == nil && p.Icon == nil && p.DisplayOrder == nil
}

// ListCategories returns all categories ordered by display_order then name.
func (s *Store) ListCategories(ctx context.Context) ([]Category, error) {
	const query = `
		SELECT id, name, color, icon, display_order
		FROM categories
		ORDER BY display_order ASC, name ASC
	`

	var rows []categoryRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, &StoreError{Op: "ListCategories", Err: err}
	}

	categories := make([]Category, 0, len(rows))
	for _, r := range rows {
		categories = append(categories, r.toCategory())
	}
	return categories, nil
}

// GetCategory returns the category with the given id, or ErrCategoryNotFound.
func (s *Store) GetCategory(ctx context.Context, id int64) (Category, error) {
	const query = `SELECT id, name, color, icon, display_order FROM categories WHERE id = ?`

	var row categoryRow
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Category{}, ErrCategoryNotFound
		}
		return Category{}, &StoreError{Op: "GetCategory", Err: err}
	}
	return row.toCategory(), nil
}

// CreateCategory inserts a category with display_order = current max + 10
// and returns its generated id.
func (s *Store) CreateCategory(ctx context.Context, name, color, icon string) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, &StoreError{Op: "CreateCategory", Err: err}
	}
	defer tx.Rollback()

	order, err := nextDisplayOrder(tx, "categories")
	if err != nil {
		return 0, &StoreError{Op: "CreateCategory", Err: err}
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO categories (name, color, icon, display_order) VALUES (?, ?, ?, ?)",
		name, nullString(color), nullString(icon), order,
	)
	if err != nil {
		return 0, &StoreError{Op: "CreateCategory", Err: err}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, &StoreError{Op: "CreateCategory", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return 0, &StoreError{Op: "CreateCategory", Err: err}
	}
	return id, nil
}

// UpdateCategory applies a partial update. An empty patch is a no-op.
func (s *Store) UpdateCategory(ctx context.Context, id int64, patch CategoryPatch) error {
	if patch.empty() {
		return nil
	}

	b := squirrel.Update("categories")
	if patch.Name != nil {
		b = b.Set("name", *patch.Name)
	}
	if patch.Color != nil {
		b = b.Set("color", *patch.Color)
	}
	if patch.Icon != nil {
		b = b.Set("icon", *patch.Icon)
	}
	if patch.DisplayOrder != nil {
		b = b.Set("display_order", *patch.DisplayOrder)
	}

	query, args, err := b.Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return &StoreError{Op: "UpdateCategory", Err: err}
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return &StoreError{Op: "UpdateCategory", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return &StoreError{Op: "UpdateCategory", Err: err}
	}
	if affected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// DeleteCategory removes a category unconditionally. The referencing-task
// guard is the caller's responsibility (see TaskCountByCategory).
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return &StoreError{Op: "DeleteCategory", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return &StoreError{Op: "DeleteCategory", Err: err}
	}
	if affected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
