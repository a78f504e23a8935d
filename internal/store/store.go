package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentVersion = 2

type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}
	if version < 2 {
		if err := s.migrateV2(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

// migrateV1 is the original layout: tasks carried a single target_date
// and no notion of a multi-day window.
func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS activity_history (
		day   TEXT PRIMARY KEY,
		total INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		link        TEXT NOT NULL DEFAULT '',
		note        TEXT NOT NULL DEFAULT '',
		completed   INTEGER NOT NULL DEFAULT 0,
		target_date TEXT,
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS handles (
		platform TEXT PRIMARY KEY,
		handle   TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('window_days', '365');
	`
	_, err := s.db.Exec(ddl)
	return err
}

// migrateV2 turns tasks into multi-day windows: a start date plus a
// duration in days, and an explicit position for insertion order.
// Legacy rows inherit target_date as start_date with a 1-day window;
// rows with neither date default to the migration day.
func (s *Store) migrateV2() error {
	const ddl = `
	ALTER TABLE tasks ADD COLUMN start_date TEXT;
	ALTER TABLE tasks ADD COLUMN duration INTEGER NOT NULL DEFAULT 1;
	ALTER TABLE tasks ADD COLUMN position INTEGER NOT NULL DEFAULT 0;

	UPDATE tasks
	SET start_date = COALESCE(target_date, date('now', 'localtime'))
	WHERE start_date IS NULL;
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.config/cpcdash/cpcdash.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "cpcdash", "cpcdash.db"), nil
}
