package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/emiliopalmerini/nexa/internal/adapters/turso"
	"github.com/emiliopalmerini/nexa/internal/domain"
)

func seedInterviews(t *testing.T, repos *turso.Repositories) {
	t.Helper()
	ctx := context.Background()
	created := time.Date(2025, time.January, 2, 10, 0, 0, 0, time.UTC)

	for _, iv := range []*domain.Interview{
		{ID: "own-1", UserID: "user-1", Role: "Backend", Type: "Mixed Technical", Techstack: []string{"Go", "SQL"}, Finalized: true, CreatedAt: created},
		{ID: "other-1", UserID: "user-2", Role: "Frontend", Type: "Behavioral", Finalized: true, CreatedAt: created},
	} {
		if err := repos.Interviews.Create(ctx, iv); err != nil {
			t.Fatalf("Failed to seed interview: %v", err)
		}
	}

	err := repos.Feedback.Save(ctx, &domain.FeedbackReport{
		ID: "fb-1", InterviewID: "own-1", UserID: "user-1", TotalScore: 77, CreatedAt: created,
	})
	if err != nil {
		t.Fatalf("Failed to seed feedback: %v", err)
	}
}

func TestInterviewsCommand(t *testing.T) {
	db := testDB(t, false)
	useDB(t, db)
	seedInterviews(t, turso.NewRepositories(db))

	out, err := execute(t, "interviews", "--user", "user-1")
	if err != nil {
		t.Fatalf("interviews error = %v", err)
	}
	for _, want := range []string{"own-1", "Backend", "Mixed", "Go, SQL", "Jan 2, 2025", "77/100"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "other-1") {
		t.Errorf("own list includes another user's interview:\n%s", out)
	}

	out, err = execute(t, "interviews", "--user", "user-1", "--latest")
	if err != nil {
		t.Fatalf("interviews --latest error = %v", err)
	}
	if !strings.Contains(out, "other-1") || !strings.Contains(out, "---") || strings.Contains(out, "own-1") {
		t.Errorf("latest output:\n%s", out)
	}
}

func TestInterviewsCommand_Empty(t *testing.T) {
	useDB(t, testDB(t, false))

	out, err := execute(t, "interviews", "--user", "nobody")
	if err != nil {
		t.Fatalf("interviews error = %v", err)
	}
	if !strings.Contains(out, "No interviews found") {
		t.Errorf("output = %q", out)
	}
}
