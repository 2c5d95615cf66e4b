package ports

import (
	"context"

	"github.com/emiliopalmerini/nexa/internal/domain"
)

// TranscriptStorage archives the transcript of a finished session.
type TranscriptStorage interface {
	Store(ctx context.Context, sessionID string, entries []domain.TranscriptEntry) error
	Get(ctx context.Context, sessionID string) ([]domain.TranscriptEntry, error)
	Delete(ctx context.Context, sessionID string) error
	Exists(ctx context.Context, sessionID string) (bool, error)
}
