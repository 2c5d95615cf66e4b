package domain

import (
	"fmt"
	"strings"
	"time"
)

// SessionState is the lifecycle state of one interview call.
type SessionState string

const (
	SessionInactive   SessionState = "INACTIVE"
	SessionConnecting SessionState = "CONNECTING"
	SessionActive     SessionState = "ACTIVE"
	SessionFinished   SessionState = "FINISHED"
)

// IsTerminal reports whether no further transition is possible.
func (s SessionState) IsTerminal() bool {
	return s == SessionFinished
}

// SessionKind selects what a session is for.
type SessionKind string

const (
	// SessionGenerate runs the question-generation workflow.
	SessionGenerate SessionKind = "generate"
	// SessionAssess runs a scored interview over stored questions.
	SessionAssess SessionKind = "assess"
)

// ParseSessionKind converts a user supplied string to a SessionKind.
func ParseSessionKind(s string) (SessionKind, error) {
	switch SessionKind(strings.ToLower(strings.TrimSpace(s))) {
	case SessionGenerate:
		return SessionGenerate, nil
	case SessionAssess, "interview":
		return SessionAssess, nil
	default:
		return "", fmt.Errorf("unknown session kind %q", s)
	}
}

// SessionContext is fixed for the lifetime of a session.
type SessionContext struct {
	Kind        SessionKind
	UserID      string
	UserName    string
	InterviewID string
	FeedbackID  string
	Questions   []string
}

// Validate checks the fields each kind depends on.
func (c SessionContext) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	switch c.Kind {
	case SessionGenerate:
		return nil
	case SessionAssess:
		if c.InterviewID == "" {
			return fmt.Errorf("interview id is required for %s sessions", c.Kind)
		}
		return nil
	default:
		return fmt.Errorf("unknown session kind %q", c.Kind)
	}
}

// FormattedQuestions renders the questions as a dash list, one per line.
func (c SessionContext) FormattedQuestions() string {
	lines := make([]string, len(c.Questions))
	for i, q := range c.Questions {
		lines[i] = "- " + q
	}
	return strings.Join(lines, "\n")
}

// Role identifies the speaker of a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleSystem    Role = "system"
	RoleAssistant Role = "assistant"
)

// ParseRole maps a transport speaker role onto a Role.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, true
	case RoleSystem:
		return RoleSystem, true
	case RoleAssistant, "bot":
		return RoleAssistant, true
	default:
		return "", false
	}
}

// TranscriptEntry is one finalized utterance.
type TranscriptEntry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// SessionRecord is the persisted summary of a session.
type SessionRecord struct {
	ID          string
	UserID      string
	Kind        SessionKind
	InterviewID *string
	FeedbackID  *string
	State       SessionState
	Redirect    *string
	Error       *string
	EntryCount  int64
	StartedAt   time.Time
	EndedAt     *time.Time
}

// Duration returns how long the session ran, zero while it is still open.
func (r *SessionRecord) Duration() time.Duration {
	if r.EndedAt == nil {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}
