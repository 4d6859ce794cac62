package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteDriverName = "sqlite"

// InitDB opens/creates a SQLite DB file and ensures tables exist.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// SQLite tolerates a single writer best
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

const schemaPendingUpdates = `
CREATE TABLE IF NOT EXISTS pending_updates (
    id TEXT PRIMARY KEY,
    item TEXT NOT NULL,
    label TEXT,
    value TEXT NOT NULL,
    mapped_value TEXT,
    show_toast BOOLEAN NOT NULL,
    enqueued_at TIMESTAMP NOT NULL
);
`

const schemaUpdateOutcomes = `
CREATE TABLE IF NOT EXISTS update_outcomes (
    id TEXT PRIMARY KEY,
    has_connection BOOLEAN NOT NULL,
    http_status INTEGER NOT NULL,
    item TEXT NOT NULL,
    label TEXT,
    value TEXT NOT NULL,
    mapped_value TEXT,
    show_toast BOOLEAN NOT NULL,
    completed_at INTEGER NOT NULL
);
`

const schemaUsers = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL
);
`

func ensureSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i, stmt := range []string{
		schemaPendingUpdates,
		schemaUpdateOutcomes,
		schemaUsers,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
