package turso

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/emiliopalmerini/nexa/internal/ports"
	"github.com/emiliopalmerini/nexa/internal/util"
)

// Repositories holds all turso repository implementations as port interfaces.
type Repositories struct {
	Users       ports.UserRepository
	Interviews  ports.InterviewRepository
	Feedback    ports.FeedbackRepository
	Sessions    ports.SessionRepository
	Transcripts ports.TranscriptStorage
}

// NewRepositories creates all turso repository implementations from a database connection.
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Users:       NewUserRepository(db),
		Interviews:  NewInterviewRepository(db),
		Feedback:    NewFeedbackRepository(db),
		Sessions:    NewSessionRepository(db),
		Transcripts: NewTranscriptRepository(db),
	}
}

func formatTime(t time.Time) string {
	return util.FormatTime(t)
}

func parseTime(s string) time.Time {
	t, _ := util.ParseTime(s)
	return t
}

func encodeJSON(v any) (string, error) {
	if v == nil {
		return "[]", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode column: %w", err)
	}
	if string(b) == "null" {
		return "[]", nil
	}
	return string(b), nil
}

func decodeJSON(s string, v any) error {
	if s == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return fmt.Errorf("failed to decode column: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}
