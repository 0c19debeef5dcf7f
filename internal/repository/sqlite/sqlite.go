// Package sqlite implements the repository interfaces on SQLite.
//
// SQLite fits this application's shape: a single-server interactive tool
// where the store is a file next to the binary. We use modernc.org/sqlite,
// a pure-Go translation of SQLite, so no C toolchain is needed and
// cross-compilation stays trivial. Connections are pooled by database/sql;
// each repository call is a single statement, which is exactly the atomicity
// the data model asks for (no cross-statement transactions anywhere).
package sqlite

import (
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps the sql.DB pool and implements the repository interfaces.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed while a write is in flight; with one writer at
	// a time (interactive use) this is all the concurrency we need.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Always defer this next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps this
// idempotent across restarts; the schema is small enough that a migration
// framework would be overhead without benefit.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// Write-only audit log. 'metadata' is free-form text (typically a short
	// JSON fragment describing the action).
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS history (
			username  TEXT NOT NULL REFERENCES users(username),
			action    TEXT NOT NULL,
			timestamp DATETIME NOT NULL,
			metadata  TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_history_username ON history(username);
	`)
	if err != nil {
		return fmt.Errorf("creating history table: %w", err)
	}

	// Health records key on an xid rather than a bare
	// (username, timestamp) natural key, which collides under sub-second
	// repeated submissions. The UNIQUE index rejects exact duplicates regardless.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS health_data (
			id                  TEXT PRIMARY KEY,
			username            TEXT NOT NULL REFERENCES users(username),
			timestamp           DATETIME NOT NULL,
			age                 INTEGER NOT NULL,
			sex                 TEXT NOT NULL,
			height              REAL NOT NULL,
			weight              REAL NOT NULL,
			gamma_GTP           REAL NOT NULL,
			smoking_prediction  INTEGER NOT NULL,
			drinking_prediction INTEGER NOT NULL,
			SBP                 REAL,
			DBP                 REAL,
			BLDS                REAL,
			UNIQUE(username, timestamp)
		);
		CREATE INDEX IF NOT EXISTS idx_health_data_user_time ON health_data(username, timestamp);
	`)
	if err != nil {
		return fmt.Errorf("creating health_data table: %w", err)
	}

	return nil
}
