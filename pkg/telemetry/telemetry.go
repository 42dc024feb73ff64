// Package telemetry records per-attempt call outcomes for monitoring.
//
// Emission is fire-and-forget: recording never blocks the dispatch path and
// sink failures are swallowed (at most logged). A telemetry problem must
// never become a user-visible dispatch failure.
package telemetry

import (
	"context"
	"time"
)

// OutcomeSuccess marks a successful attempt. Failed attempts record the
// fault kind string instead.
const OutcomeSuccess = "success"

// Event describes one call attempt's outcome. Write-once; emitted
// asynchronously in attempt order within a call.
type Event struct {
	// CallID identifies the dispatched call this attempt belongs to.
	CallID string `json:"call_id"`

	// Provider is the provider identifier.
	Provider string `json:"provider"`

	// Model is the model identifier.
	Model string `json:"model"`

	// Attempt is the 1-based attempt number within the call.
	Attempt int `json:"attempt"`

	// Duration is how long the attempt took.
	Duration time.Duration `json:"duration"`

	// Outcome is OutcomeSuccess or the fault kind string.
	Outcome string `json:"outcome"`

	// Timestamp is when the attempt finished.
	Timestamp time.Time `json:"timestamp"`
}

// Emitter records telemetry events. Implementations must not block the
// caller and must never propagate failures.
type Emitter interface {
	Record(ev Event)
}

// Sink consumes events on the emitter's own goroutine. Write errors are
// logged by the emitter and otherwise ignored.
type Sink interface {
	Write(ctx context.Context, ev Event) error
}

// Noop is an Emitter that discards all events.
type Noop struct{}

// Record discards the event.
func (Noop) Record(Event) {}
