package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // SQLite driver
)

// Store owns the single persistent connection to the sqlite database and is
// the only component that issues writes. Entities returned from its methods
// are plain value records.
type Store struct {
	db   *sqlx.DB
	log  zerolog.Logger
	path string
}

// Open opens (or creates) the sqlite database at path, applies pragmas and
// pending migrations, and seeds default categories and statuses on first
// use. It is safe to call on every process start.
func Open(path string, log zerolog.Logger) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database at %s: %w", path, err)
	}

	s := &Store{
		db:   db,
		log:  log.With().Str("component", "store").Logger(),
		path: path,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the filesystem path to the database file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initialize() error {
	for _, pragma := range PragmaStatements() {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("execute pragma %q: %w", pragma, err)
		}
	}

	if err := s.migrate(); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	if err := s.seedDefaults(); err != nil {
		return fmt.Errorf("seed defaults: %w", err)
	}

	return nil
}

// migrate applies all pending migrations in version order, each in its own
// transaction. Already-applied versions are skipped, so running on every
// startup is a no-op once the store is current.
func (s *Store) migrate() error {
	// The ledger table must exist before we can read the current version.
	if _, err := s.db.Exec(SchemaVersionTableSQL); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	current, err := s.MigrationVersion()
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		tx, err := s.db.Beginx()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.version, err)
		}

		if err := m.apply(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_version (version, applied_at) VALUES (?, ?)",
			m.version, time.Now().Unix(),
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.version, err)
		}

		s.log.Info().Int("version", m.version).Str("name", m.name).Msg("applied migration")
	}

	return nil
}

// MigrationVersion returns the highest applied schema version, 0 for a
// fresh store.
func (s *Store) MigrationVersion() (int, error) {
	var version int
	err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

const initializedKey = "db_initialized"

// defaultCategories and defaultStatuses are seeded into an empty store on
// first use.
var defaultCategories = []Category{
	{Name: "Infrastructure & Cloud", Color: "#6366f1", Icon: "server", DisplayOrder: 1},
	{Name: "Security & Access Control", Color: "#ef4444", Icon: "shield", DisplayOrder: 2},
	{Name: "Training & Documentation", Color: "#f59e0b", Icon: "book", DisplayOrder: 3},
	{Name: "Employee Management", Color: "#8b5cf6", Icon: "users", DisplayOrder: 4},
	{Name: "Business Process", Color: "#92400e", Icon: "briefcase", DisplayOrder: 5},
	{Name: "Research & Optimization", Color: "#0ea5e9", Icon: "lightbulb", DisplayOrder: 6},
}

var defaultStatuses = []Status{
	{Name: "BACKLOG", Color: "#64748b", DisplayOrder: 1},
	{Name: "ON HOLD", Color: "#b45309", DisplayOrder: 2},
	{Name: "TO DO", Color: "#1e40af", DisplayOrder: 3},
	{Name: "DEV ONGOING", Color: "#065f46", DisplayOrder: 4},
}

// seedDefaults inserts the default categories and statuses when their tables
// are empty and records the initialization flag. A failure reading the flag
// is treated as "not yet initialized" rather than fatal, so a store with a
// damaged settings row re-runs the (idempotent) seeding instead of refusing
// to start.
func (s *Store) seedDefaults() error {
	ctx := context.Background()

	if v, err := s.Setting(ctx, initializedKey); err == nil && v == "true" {
		return nil
	} else if err != nil {
		s.log.Warn().Err(err).Msg("initialization flag unreadable, re-running bootstrap")
	}

	var categoryCount int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&categoryCount); err != nil {
		return fmt.Errorf("count categories: %w", err)
	}
	if categoryCount == 0 {
		for _, c := range defaultCategories {
			if _, err := s.db.Exec(
				"INSERT INTO categories (name, color, icon, display_order) VALUES (?, ?, ?, ?)",
				c.Name, c.Color, c.Icon, c.DisplayOrder,
			); err != nil {
				return fmt.Errorf("seed category %q: %w", c.Name, err)
			}
		}
	}

	var statusCount int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM statuses").Scan(&statusCount); err != nil {
		return fmt.Errorf("count statuses: %w", err)
	}
	if statusCount == 0 {
		for _, st := range defaultStatuses {
			if _, err := s.db.Exec(
				"INSERT INTO statuses (name, color, display_order) VALUES (?, ?, ?)",
				st.Name, st.Color, st.DisplayOrder,
			); err != nil {
				return fmt.Errorf("seed status %q: %w", st.Name, err)
			}
		}
	}

	if err := s.SetSetting(ctx, initializedKey, "true"); err != nil {
		return err
	}

	s.log.Info().Msg("store bootstrap complete")
	return nil
}

// nextDisplayOrder computes the next display_order for the given table
// inside tx. Values step by 10 so manual reordering can slot rows into the
// gaps without renumbering.
func nextDisplayOrder(tx *sqlx.Tx, table string) (int64, error) {
	var next int64
	query := fmt.Sprintf("SELECT COALESCE(MAX(display_order), 0) + 10 FROM %s", table)
	if err := tx.QueryRow(query).Scan(&next); err != nil {
		return 0, fmt.Errorf("compute display order for %s: %w", table, err)
	}
	return next, nil
}
