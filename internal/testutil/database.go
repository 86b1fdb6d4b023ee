package testutil

import (
	"testing"

	"ffg-go/internal/database"
)

// NewTestDatabase creates a new in-memory SQLite database with migrations
// applied. It serves as both persister and journal and is closed when the
// test completes.
func NewTestDatabase(t testing.TB) *database.SQLiteDatabase {
	t.Helper()

	db, err := database.NewSQLiteDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}
