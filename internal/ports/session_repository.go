package ports

import (
	"context"

	"github.com/emiliopalmerini/nexa/internal/domain"
)

type SessionRepository interface {
	Create(ctx context.Context, record *domain.SessionRecord) error
	Update(ctx context.Context, record *domain.SessionRecord) error
	GetByID(ctx context.Context, id string) (*domain.SessionRecord, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.SessionRecord, error)
}

type InterviewRepository interface {
	Create(ctx context.Context, interview *domain.Interview) error
	GetByID(ctx context.Context, id string) (*domain.Interview, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Interview, error)
	ListLatest(ctx context.Context, opts ListLatestOptions) ([]*domain.Interview, error)
}

// ListLatestOptions selects finalized interviews created by other users.
type ListLatestOptions struct {
	ExcludeUserID string
	Limit         int
}

type FeedbackRepository interface {
	Save(ctx context.Context, feedback *domain.FeedbackReport) error
	GetByID(ctx context.Context, id string) (*domain.FeedbackReport, error)
	GetByInterview(ctx context.Context, interviewID, userID string) (*domain.FeedbackReport, error)
}

type UserRepository interface {
	Upsert(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
}
