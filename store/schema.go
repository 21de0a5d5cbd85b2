package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SettingsTableSQL creates the key/value settings table used for
// process-wide flags such as the initialization marker.
const SettingsTableSQL = `
CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT,
    updated_at INTEGER
);
`

// CategoriesTableSQL creates the categories table.
const CategoriesTableSQL = `
CREATE TABLE IF NOT EXISTS categories (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    color TEXT,
    icon TEXT,
    display_order INTEGER
);
`

// StatusesTableSQL creates the statuses table.
const StatusesTableSQL = `
CREATE TABLE IF NOT EXISTS statuses (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    color TEXT,
    display_order INTEGER
);
`

// TasksTableSQL creates the main tasks table. Task IDs are caller-supplied
// strings, not surrogates. category_id and status_id are soft references:
// the deletion guard lives in the HTTP layer, not in the schema.
const TasksTableSQL = `
CREATE TABLE IF NOT EXISTS tasks (
    id TEXT PRIMARY KEY,
    description TEXT NOT NULL,
    category_id INTEGER,
    status_id INTEGER,
    created_at INTEGER,
    updated_at INTEGER,
    is_done INTEGER DEFAULT 0,
    notes TEXT,
    priority INTEGER DEFAULT 3,
    display_order INTEGER
);
`

// TaskHistoryTableSQL creates the append-only task history table. One row is
// written for every status transition, including task creation.
const TaskHistoryTableSQL = `
CREATE TABLE IF NOT EXISTS task_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    task_id TEXT NOT NULL,
    status_id INTEGER,
    timestamp INTEGER,
    notes TEXT
);
`

// SchemaVersionTableSQL creates the schema version table for migration tracking.
const SchemaVersionTableSQL = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
);
`

// TasksIndexesSQL creates indexes on tasks for the common list filters.
const TasksIndexesSQL = `
CREATE INDEX IF NOT EXISTS idx_tasks_category_id ON tasks(category_id);
CREATE INDEX IF NOT EXISTS idx_tasks_status_id ON tasks(status_id);
CREATE INDEX IF NOT EXISTS idx_tasks_display_order ON tasks(display_order);
`

// TaskHistoryIndexesSQL creates indexes on task_history.
const TaskHistoryIndexesSQL = `
CREATE INDEX IF NOT EXISTS idx_task_history_task_id ON task_history(task_id);
CREATE INDEX IF NOT EXISTS idx_task_history_timestamp ON task_history(timestamp);
`

// AllTableSchemas returns all table creation statements in order.
func AllTableSchemas() []string {
	return []string{
		SchemaVersionTableSQL,
		SettingsTableSQL,
		CategoriesTableSQL,
		StatusesTableSQL,
		TasksTableSQL,
		TaskHistoryTableSQL,
	}
}

// AllIndexes returns all index creation statements.
func AllIndexes() []string {
	return []string{
		TasksIndexesSQL,
		TaskHistoryIndexesSQL,
	}
}

// PragmaStatements returns pragma statements to execute on database connection.
func PragmaStatements() []string {
	return []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
}

// migration is a single schema change. Migrations are applied in version
// order, each inside its own transaction, and recorded in schema_version.
type migration struct {
	version int
	name    string
	apply   func(tx *sqlx.Tx) error
}

// migrations holds all schema migrations in order. The highest version here
// is the schema version a fully migrated store reports.
var migrations = []migration{
	{
		version: 1,
		name:    "create core tables",
		apply: func(tx *sqlx.Tx) error {
			for _, ddl := range AllTableSchemas() {
				if _, err := tx.Exec(ddl); err != nil {
					return fmt.Errorf("create table: %w", err)
				}
			}
			for _, ddl := range AllIndexes() {
				if _, err := tx.Exec(ddl); err != nil {
					return fmt.Errorf("create index: %w", err)
				}
			}
			return nil
		},
	},
	{
		version: 2,
		name:    "add is_demo column to tasks",
		apply: func(tx *sqlx.Tx) error {
			// Stores created before version tracking may already carry the
			// column, so probe before altering.
			exists, err := columnExists(tx, "tasks", "is_demo")
			if err != nil {
				return err
			}
			if exists {
				return nil
			}
			_, err = tx.Exec(`ALTER TABLE tasks ADD COLUMN is_demo INTEGER NOT NULL DEFAULT 0`)
			if err != nil {
				return fmt.Errorf("add is_demo column: %w", err)
			}
			return nil
		},
	},
}

// columnExists reports whether the given table has a column with the given name.
func columnExists(tx *sqlx.Tx, table, column string) (bool, error) {
	rows, err := tx.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("probe columns of %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			dfltValue  any
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dfltValue, &primaryKey); err != nil {
			return false, fmt.Errorf("scan column info: %w", err)
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
