package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/emiliopalmerini/nexa/internal/domain"
	"github.com/emiliopalmerini/nexa/internal/ports"
)

// HomeRoute is where every session ends up unless feedback was stored.
const HomeRoute = "/"

// ErrFeedbackNotSaved is recorded when the generator reports no stored feedback.
var ErrFeedbackNotSaved = errors.New("feedback was not saved")

// FeedbackRoute is the feedback page of an interview.
func FeedbackRoute(interviewID string) string {
	return "/interview/" + interviewID + "/feedback"
}

// Navigation is the post-session decision.
type Navigation struct {
	Route      string
	FeedbackID string
	Err        error
}

// Outcome labels the navigation for records and metrics.
func (n Navigation) Outcome() string {
	switch {
	case n.Err != nil:
		return "error"
	case n.FeedbackID != "":
		return "feedback"
	default:
		return "home"
	}
}

// Dispatcher decides what happens once a session finishes.
type Dispatcher struct {
	generator ports.FeedbackGenerator
	logger    *slog.Logger
}

func NewDispatcher(generator ports.FeedbackGenerator, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{generator: generator, logger: logger}
}

// Dispatch runs the completion path for a finished session. It never retries;
// every failure degrades to the home route.
func (d *Dispatcher) Dispatch(ctx context.Context, sc domain.SessionContext, transcript []domain.TranscriptEntry) Navigation {
	if sc.Kind != domain.SessionAssess {
		return Navigation{Route: HomeRoute}
	}

	if d.generator == nil {
		err := fmt.Errorf("no feedback generator configured")
		d.logger.Error("error saving feedback", "interview_id", sc.InterviewID, "error", err)
		return Navigation{Route: HomeRoute, Err: err}
	}

	res, err := d.generator.Submit(ctx, ports.FeedbackRequest{
		InterviewID: sc.InterviewID,
		UserID:      sc.UserID,
		Transcript:  transcript,
		FeedbackID:  sc.FeedbackID,
	})
	if err == nil && (!res.Success || res.FeedbackID == "") {
		err = ErrFeedbackNotSaved
	}
	if err != nil {
		d.logger.Error("error saving feedback",
			"interview_id", sc.InterviewID,
			"user_id", sc.UserID,
			"error", err,
		)
		return Navigation{Route: HomeRoute, Err: err}
	}

	return Navigation{Route: FeedbackRoute(sc.InterviewID), FeedbackID: res.FeedbackID}
}
