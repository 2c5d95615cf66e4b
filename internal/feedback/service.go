// Package feedback scores finished interviews and stores the reports.
package feedback

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/emiliopalmerini/nexa/internal/domain"
	"github.com/emiliopalmerini/nexa/internal/ports"
)

// Service implements ports.FeedbackGenerator.
type Service struct {
	scorer     ports.Scorer
	repo       ports.FeedbackRepository
	metrics    ports.MetricsExporter
	categories []string
	logger     *slog.Logger
	now        func() time.Time
}

type Option func(*Service)

// WithCategories overrides the scoring rubric.
func WithCategories(categories []string) Option {
	return func(s *Service) {
		if len(categories) > 0 {
			s.categories = categories
		}
	}
}

func WithMetrics(m ports.MetricsExporter) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewService(scorer ports.Scorer, repo ports.FeedbackRepository, opts ...Option) *Service {
	s := &Service{
		scorer:     scorer,
		repo:       repo,
		categories: domain.DefaultFeedbackCategories,
		logger:     slog.Default(),
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FormatTranscript renders entries as "- role: content" lines.
func FormatTranscript(entries []domain.TranscriptEntry) string {
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "- %s: %s\n", e.Role, e.Content)
	}
	return b.String()
}

// Submit scores the transcript and saves the report. Re-scoring an interview
// reuses req.FeedbackID so the stored report is replaced.
func (s *Service) Submit(ctx context.Context, req ports.FeedbackRequest) (ports.FeedbackResult, error) {
	if req.InterviewID == "" || req.UserID == "" {
		return ports.FeedbackResult{}, fmt.Errorf("interview id and user id are required")
	}
	if len(req.Transcript) == 0 {
		return ports.FeedbackResult{}, fmt.Errorf("transcript is empty")
	}

	assessment, err := s.scorer.Score(ctx, FormatTranscript(req.Transcript), s.categories)
	if err != nil {
		return ports.FeedbackResult{}, fmt.Errorf("failed to score interview: %w", err)
	}
	if assessment == nil {
		return ports.FeedbackResult{}, fmt.Errorf("failed to score interview: scorer returned no assessment")
	}
	assessment.Clamp()

	id := req.FeedbackID
	if id == "" {
		id = uuid.NewString()
	}

	report := &domain.FeedbackReport{
		ID:                  id,
		InterviewID:         req.InterviewID,
		UserID:              req.UserID,
		TotalScore:          assessment.TotalScore,
		CategoryScores:      assessment.CategoryScores,
		Strengths:           assessment.Strengths,
		AreasForImprovement: assessment.AreasForImprovement,
		FinalAssessment:     assessment.FinalAssessment,
		CreatedAt:           s.now(),
	}
	if err := report.Validate(); err != nil {
		return ports.FeedbackResult{}, err
	}
	if err := s.repo.Save(ctx, report); err != nil {
		return ports.FeedbackResult{}, fmt.Errorf("failed to save feedback: %w", err)
	}

	if s.metrics != nil {
		if err := s.metrics.ExportFeedback(ctx, report); err != nil {
			s.logger.Warn("failed to export feedback metrics", "feedback_id", id, "error", err)
		}
	}

	s.logger.Info("feedback saved", "feedback_id", id, "interview_id", req.InterviewID, "total_score", report.TotalScore)
	return ports.FeedbackResult{Success: true, FeedbackID: id}, nil
}
