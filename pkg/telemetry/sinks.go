package telemetry

import (
	"context"
	"log/slog"

	"github.com/tbuchner/relais/pkg/observability"
)

// LogSink writes events as structured log entries.
type LogSink struct {
	Logger *slog.Logger
}

// Write logs the event. Never returns an error.
func (s *LogSink) Write(_ context.Context, ev Event) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("provider call attempt",
		"call_id", ev.CallID,
		"provider", ev.Provider,
		"model", ev.Model,
		"attempt", ev.Attempt,
		"duration", ev.Duration,
		"outcome", ev.Outcome,
	)
	return nil
}

// MetricsSink updates the Prometheus dispatch metrics.
type MetricsSink struct{}

// Write observes the event in the relais_dispatch_* collectors.
// Never returns an error.
func (MetricsSink) Write(_ context.Context, ev Event) error {
	observability.DispatchAttemptsTotal.WithLabelValues(ev.Provider, ev.Model, ev.Outcome).Inc()
	observability.DispatchLatency.WithLabelValues(ev.Provider, ev.Model).Observe(ev.Duration.Seconds())
	return nil
}
