package otel

import (
	"context"

	"github.com/emiliopalmerini/nexa/internal/domain"
	"github.com/emiliopalmerini/nexa/internal/ports"
)

// NoOpExporter is a metrics exporter that does nothing.
type NoOpExporter struct{}

// NewNoOpExporter creates a new no-op exporter for graceful degradation.
func NewNoOpExporter() *NoOpExporter {
	return &NoOpExporter{}
}

func (e *NoOpExporter) ExportSessionMetrics(ctx context.Context, m *ports.SessionMetrics) error {
	return nil
}

func (e *NoOpExporter) ExportFeedback(ctx context.Context, f *domain.FeedbackReport) error {
	return nil
}

func (e *NoOpExporter) Close(ctx context.Context) error {
	return nil
}

// NewFromEnv returns the OTLP exporter when enabled, otherwise a no-op.
func NewFromEnv(ctx context.Context) (ports.MetricsExporter, error) {
	cfg := LoadConfig()
	if !cfg.Enabled {
		return NewNoOpExporter(), nil
	}
	return NewExporter(ctx, cfg)
}
