package cli

import (
	"bytes"
	"context"
	"database/sql"
	"testing"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/emiliopalmerini/nexa/internal/migrate"
)

// testDB creates an in-memory database. Migrations are applied unless
// bare is set.
func testDB(t *testing.T, bare bool) *sql.DB {
	t.Helper()

	db, err := sql.Open("libsql", "file::memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}
	if !bare {
		if err := migrate.RunAll(context.Background(), db); err != nil {
			t.Fatalf("Failed to run migrations: %v", err)
		}
	}
	return db
}

// useDB points the commands at db for the rest of the test.
func useDB(t *testing.T, db *sql.DB) {
	t.Helper()
	testDBOverride = db
	t.Cleanup(func() { testDBOverride = nil })
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("NEXA_CONFIG", "")
	interviewsUser, interviewsLatest, interviewsLimit = "", false, 20

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}
