// Package testutil provides an in-memory database and builders for tests.
package testutil

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"tradepro/internal/database"
)

// Logger returns a logger that discards output.
func Logger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// SetupTestDB opens an in-memory SQLite database with all migrations applied,
// seed quotes included. The database is closed when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    repo := testutil.SetupTestDB(t)
//	    // repo is ready to use
//	}
func SetupTestDB(t *testing.T) *database.Repo {
	t.Helper()

	db, err := database.Open(database.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	log := Logger()
	if err := database.Migrate(context.Background(), db, log); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return database.New(db, log)
}
