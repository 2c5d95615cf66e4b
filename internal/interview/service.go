// Package interview creates interviews from the generate workflow.
package interview

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/emiliopalmerini/nexa/internal/domain"
	"github.com/emiliopalmerini/nexa/internal/ports"
)

const maxQuestions = 20

// GenerateRequest is what the voice workflow collects from the candidate.
type GenerateRequest struct {
	Type      string `json:"type"`
	Role      string `json:"role"`
	Level     string `json:"level"`
	Techstack string `json:"techstack"`
	Amount    int    `json:"amount"`
	UserID    string `json:"userid"`
}

func (r GenerateRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.UserID) == "":
		return fmt.Errorf("userid is required")
	case strings.TrimSpace(r.Role) == "":
		return fmt.Errorf("role is required")
	case r.Amount <= 0 || r.Amount > maxQuestions:
		return fmt.Errorf("amount must be between 1 and %d", maxQuestions)
	}
	return nil
}

type Service struct {
	questions ports.QuestionGenerator
	repo      ports.InterviewRepository
	logger    *slog.Logger
	cover     func() string
	now       func() time.Time
}

func NewService(questions ports.QuestionGenerator, repo ports.InterviewRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		questions: questions,
		repo:      repo,
		logger:    logger,
		cover:     RandomCover,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// RandomCover picks one of the stock cover images.
func RandomCover() string {
	return domain.InterviewCovers[rand.IntN(len(domain.InterviewCovers))]
}

// Generate drafts the questions and stores a finalized interview.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*domain.Interview, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	techstack := domain.SplitTechstack(req.Techstack)
	questions, err := s.questions.Generate(ctx, ports.QuestionRequest{
		Role:      req.Role,
		Level:     req.Level,
		Type:      req.Type,
		Techstack: techstack,
		Amount:    req.Amount,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate questions: %w", err)
	}

	iv := &domain.Interview{
		ID:         uuid.NewString(),
		UserID:     req.UserID,
		Role:       req.Role,
		Level:      req.Level,
		Type:       req.Type,
		Techstack:  techstack,
		Questions:  questions,
		Finalized:  true,
		CoverImage: s.cover(),
		CreatedAt:  s.now(),
	}
	if err := s.repo.Create(ctx, iv); err != nil {
		return nil, fmt.Errorf("failed to save interview: %w", err)
	}

	s.logger.Info("interview created", "interview_id", iv.ID, "user_id", iv.UserID, "questions", len(questions))
	return iv, nil
}

// Get returns an interview, or nil when it does not exist.
func (s *Service) Get(ctx context.Context, id string) (*domain.Interview, error) {
	return s.repo.GetByID(ctx, id)
}
