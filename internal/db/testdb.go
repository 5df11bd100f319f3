package db

import (
	"database/sql"
	"testing"
)

// NewTestDB opens an in-memory SQLite database with the beers schema applied.
// It is closed automatically when the test finishes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening in-memory database: %v", err)
	}

	if err := EnsureSchema(db); err != nil {
		db.Close()
		t.Fatalf("applying test schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })

	return db
}
