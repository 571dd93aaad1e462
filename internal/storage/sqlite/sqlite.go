// Package sqlite implements the storage contract on a single-file SQLite
// database, the local single-user backend. The schema is created on open.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/claude/replog/internal/storage"
	_ "modernc.org/sqlite"
)

// DB wraps a database/sql handle and implements storage.Backend.
type DB struct {
	db *sql.DB
}

var _ storage.Backend = (*DB)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
    id            TEXT PRIMARY KEY,
    email         TEXT NOT NULL COLLATE NOCASE UNIQUE,
    first_name    TEXT NOT NULL DEFAULT '',
    last_name     TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    created_at    TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS training_sessions (
    id            TEXT PRIMARY KEY,
    owner_id      TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
    occurred_at   TIMESTAMP NOT NULL,
    session_date  TEXT NOT NULL,
    session_time  TEXT NOT NULL,
    short_title   TEXT NOT NULL DEFAULT '',
    duration_min  INTEGER,
    bodyweight_kg REAL,
    comments      TEXT NOT NULL DEFAULT '',
    exercises     TEXT NOT NULL,
    created_at    TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS training_sessions_owner_time_idx
    ON training_sessions (owner_id, occurred_at DESC);
`

// Open opens (or creates) the SQLite database at the given path and ensures
// the schema exists.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}
