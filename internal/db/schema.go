package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema. Names collate case-insensitively so the
// unique index, lookups, and deletes all share the same case semantics.
const schema = `
CREATE TABLE IF NOT EXISTS beers (
    id    INTEGER PRIMARY KEY,
    name  TEXT NOT NULL COLLATE NOCASE CHECK (length(name) <= 140),
    type  TEXT CHECK (type IS NULL OR length(type) <= 140),
    ibu   REAL,
    value REAL,
    note  REAL NOT NULL,
    date  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_beers_name ON beers(name);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
