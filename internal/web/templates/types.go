package templates

import (
	"time"

	"github.com/emiliopalmerini/nexa/internal/domain"
)

// InterviewCard is one interview on the dashboard.
type InterviewCard struct {
	ID         string
	Role       string
	Type       string // already normalised, "Mixed" for any mix
	Techstack  []string
	CoverImage string
	CreatedAt  time.Time
	Score      *int // nil until feedback exists
}

type Dashboard struct {
	UserName string
	Own      []InterviewCard
	Latest   []InterviewCard
}

// SessionPage starts a generate session when InterviewID is empty and an
// assess session otherwise.
type SessionPage struct {
	UserName    string
	InterviewID string
	Role        string
	Type        string
	Techstack   []string
	Questions   int
}

// SessionPanel is the polled call view.
type SessionPanel struct {
	ID          string
	State       domain.SessionState
	Speaking    bool
	LastMessage string
	Error       string
}

type CategoryView struct {
	Name    string
	Score   int
	Comment string
}

type FeedbackPage struct {
	InterviewID     string
	Role            string
	HasFeedback     bool
	TotalScore      int
	Band            domain.ScoreBand
	Categories      []CategoryView
	Strengths       []string
	Areas           []string
	FinalAssessment string
	CreatedAt       time.Time
}
