package ports

import (
	"context"

	"github.com/emiliopalmerini/nexa/internal/domain"
)

type FeedbackRequest struct {
	InterviewID string
	UserID      string
	Transcript  []domain.TranscriptEntry
	FeedbackID  string
}

type FeedbackResult struct {
	Success    bool
	FeedbackID string
}

// FeedbackGenerator scores a transcript and stores the resulting report.
type FeedbackGenerator interface {
	Submit(ctx context.Context, req FeedbackRequest) (FeedbackResult, error)
}

// Scorer turns a formatted transcript into an assessment over the given categories.
type Scorer interface {
	Score(ctx context.Context, transcript string, categories []string) (*domain.Assessment, error)
}

type QuestionRequest struct {
	Role      string
	Level     string
	Type      string
	Techstack []string
	Amount    int
}

// QuestionGenerator produces interview questions for a role.
type QuestionGenerator interface {
	Generate(ctx context.Context, req QuestionRequest) ([]string, error)
}
