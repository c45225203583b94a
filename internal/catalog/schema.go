// Package catalog mirrors the derived entry index into SQLite so listings,
// tag and type filters and backlinks over related ids can be answered without
// re-parsing the repository. The entry files stay the source of truth.
package catalog

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS entries (
	path     TEXT PRIMARY KEY,
	id       TEXT NOT NULL,
	title    TEXT NOT NULL DEFAULT '',
	type     TEXT NOT NULL DEFAULT '',
	status   TEXT,
	created  TEXT NOT NULL DEFAULT '',
	updated  TEXT,
	checksum TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS entry_tags (
	path TEXT NOT NULL REFERENCES entries(path) ON DELETE CASCADE,
	tag  TEXT NOT NULL,
	pos  INTEGER NOT NULL,
	UNIQUE(path, tag)
);

CREATE TABLE IF NOT EXISTS related (
	path   TEXT NOT NULL REFERENCES entries(path) ON DELETE CASCADE,
	target TEXT NOT NULL,
	UNIQUE(path, target)
);

CREATE INDEX IF NOT EXISTS idx_entries_id ON entries(id);
CREATE INDEX IF NOT EXISTS idx_entries_type ON entries(type);
CREATE INDEX IF NOT EXISTS idx_entry_tags_tag ON entry_tags(tag);
CREATE INDEX IF NOT EXISTS idx_related_target ON related(target);
`

// DB wraps a sql.DB with catalog operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database at dsn and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("catalog: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("catalog: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("catalog: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
