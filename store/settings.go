package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ErrSettingNotFound is returned when a setting key has never been written.
var ErrSettingNotFound = errors.New("setting not found")

// Setting returns the value stored under key.
func (s *Store) Setting(ctx context.Context, key string) (string, error) {
	var value sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrSettingNotFound
	}
	if err != nil {
		return "", &StoreError{Op: "Setting", Err: err}
	}
	return value.String, nil
}

// SetSetting writes a setting with upsert semantics in a single atomic
// statement.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, time.Now().Unix())
	if err != nil {
		return &StoreError{Op: "SetSetting", Err: err}
	}
	return nil
}
