package repository

import (
	"testing"

	"github.com/signetlab/signet/internal/db"
)

// newTestDB opens an in-memory database with the full schema applied.
// The single-connection pool keeps the same :memory: instance alive for
// the duration of the test.
func newTestDB(t *testing.T) *db.DB {
	t.Helper()

	database, err := db.New(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := db.RunMigrations(database); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return database
}
