package db

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS overrides (
	circuit_id  INTEGER PRIMARY KEY,
	temperature REAL NOT NULL,
	created_at  TEXT NOT NULL,
	stop_at     TEXT,
	disabled_at TEXT,
	last_set    TEXT
);

CREATE TABLE IF NOT EXISTS commands (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	issued_at  TEXT NOT NULL,
	circuit_id INTEGER NOT NULL,
	kind       TEXT NOT NULL,
	value      REAL NOT NULL,
	ok         BOOLEAN NOT NULL DEFAULT 1
);
`

// Open opens the SQLite database at path and creates the schema if it does
// not exist yet.
func Open(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return conn, nil
}
