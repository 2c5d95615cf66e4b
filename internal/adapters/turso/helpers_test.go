package turso_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/emiliopalmerini/nexa/internal/adapters/turso"
	"github.com/emiliopalmerini/nexa/internal/domain"
	"github.com/emiliopalmerini/nexa/internal/migrate"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("libsql", "file::memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	// One connection keeps the private in-memory database alive.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	ctx := context.Background()
	if err := migrate.RunAll(ctx, db); err != nil {
		_ = db.Close()
		t.Fatalf("Failed to run migrations: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedInterview(t *testing.T, db *sql.DB, id, userID string, createdAt time.Time, finalized bool) *domain.Interview {
	t.Helper()

	iv := &domain.Interview{
		ID:         id,
		UserID:     userID,
		Role:       "Backend Engineer",
		Level:      "Senior",
		Type:       "Technical",
		Techstack:  []string{"Go", "SQLite"},
		Questions:  []string{"What is a goroutine?"},
		Finalized:  finalized,
		CoverImage: "/static/covers/fjord.svg",
		CreatedAt:  createdAt,
	}
	if err := turso.NewInterviewRepository(db).Create(context.Background(), iv); err != nil {
		t.Fatalf("Failed to seed interview: %v", err)
	}
	return iv
}
