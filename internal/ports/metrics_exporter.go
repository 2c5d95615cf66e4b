package ports

import (
	"context"
	"time"

	"github.com/emiliopalmerini/nexa/internal/domain"
)

// MetricsExporter exports session metrics to an external observability system.
type MetricsExporter interface {
	// ExportSessionMetrics exports metrics for a finished session.
	ExportSessionMetrics(ctx context.Context, m *SessionMetrics) error
	// ExportFeedback records the scores of a stored feedback report.
	ExportFeedback(ctx context.Context, f *domain.FeedbackReport) error
	// Close shuts down the exporter and flushes any pending metrics.
	Close(ctx context.Context) error
}

// SessionMetrics describes one finished session.
type SessionMetrics struct {
	SessionID    string
	Kind         string
	Outcome      string
	EntryCount   int64
	DispatchFail bool

	StartedAt time.Time
	EndedAt   time.Time
}
