package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/emiliopalmerini/nexa/internal/domain"
	"github.com/emiliopalmerini/nexa/internal/ports"
)

const (
	serviceName    = "nexa"
	serviceVersion = "1.0.0"
)

// Exporter exports session and feedback metrics to an OTEL Collector.
type Exporter struct {
	provider *sdkmetric.MeterProvider

	sessionsTotal    metric.Int64Counter
	durationHist     metric.Float64Histogram
	entriesHist      metric.Int64Histogram
	dispatchFailures metric.Int64Counter
	feedbackScore    metric.Int64Histogram
	categoryScore    metric.Int64Histogram
}

// NewExporter creates a new OTEL metrics exporter.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(interval))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	return newExporter(provider)
}

// newExporter registers the instruments on provider.
func newExporter(provider *sdkmetric.MeterProvider) (*Exporter, error) {
	meter := provider.Meter(serviceName)
	e := &Exporter{provider: provider}

	var err error
	e.sessionsTotal, err = meter.Int64Counter(
		"nexa_sessions_total",
		metric.WithDescription("Total number of finished interview sessions"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sessions counter: %w", err)
	}

	e.durationHist, err = meter.Float64Histogram(
		"nexa_session_duration_seconds",
		metric.WithDescription("Call duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	e.entriesHist, err = meter.Int64Histogram(
		"nexa_session_transcript_entries",
		metric.WithDescription("Finalized utterances per session"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transcript entries histogram: %w", err)
	}

	e.dispatchFailures, err = meter.Int64Counter(
		"nexa_feedback_dispatch_failures_total",
		metric.WithDescription("Sessions whose feedback could not be saved"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dispatch failures counter: %w", err)
	}

	e.feedbackScore, err = meter.Int64Histogram(
		"nexa_feedback_total_score",
		metric.WithDescription("Total score of stored feedback reports"),
		metric.WithUnit("{score}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating feedback score histogram: %w", err)
	}

	e.categoryScore, err = meter.Int64Histogram(
		"nexa_feedback_category_score",
		metric.WithDescription("Per-category score of stored feedback reports"),
		metric.WithUnit("{score}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating category score histogram: %w", err)
	}

	return e, nil
}

// ExportSessionMetrics records a finished session.
func (e *Exporter) ExportSessionMetrics(ctx context.Context, m *ports.SessionMetrics) error {
	opt := metric.WithAttributes(
		attribute.String("kind", m.Kind),
		attribute.String("outcome", m.Outcome),
	)

	e.sessionsTotal.Add(ctx, 1, opt)
	e.entriesHist.Record(ctx, m.EntryCount, opt)
	if !m.StartedAt.IsZero() && m.EndedAt.After(m.StartedAt) {
		e.durationHist.Record(ctx, m.EndedAt.Sub(m.StartedAt).Seconds(), opt)
	}
	if m.DispatchFail {
		e.dispatchFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", m.Kind)))
	}
	return nil
}

// ExportFeedback records the scores of a stored report.
func (e *Exporter) ExportFeedback(ctx context.Context, f *domain.FeedbackReport) error {
	e.feedbackScore.Record(ctx, int64(f.TotalScore),
		metric.WithAttributes(attribute.String("band", string(domain.BandFor(f.TotalScore)))))
	for _, c := range f.CategoryScores {
		e.categoryScore.Record(ctx, int64(c.Score), metric.WithAttributes(attribute.String("category", c.Name)))
	}
	return nil
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
