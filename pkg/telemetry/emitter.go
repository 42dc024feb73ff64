package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tbuchner/relais/pkg/observability"
)

// sinkTimeout bounds how long a single sink write may take. A slow sink
// delays other events but never the dispatch path itself.
const sinkTimeout = 5 * time.Second

// AsyncEmitter fans events out to sinks from a dedicated goroutine.
// Record is non-blocking: when the buffer is full, events are dropped and
// counted rather than stalling a dispatch call.
type AsyncEmitter struct {
	events chan Event
	sinks  []Sink

	mu      sync.Mutex
	dropped uint64
	closed  bool

	done chan struct{}
}

// NewAsyncEmitter creates an emitter with the given buffer size and sinks.
// A buffer size <= 0 defaults to 256.
func NewAsyncEmitter(buffer int, sinks ...Sink) *AsyncEmitter {
	if buffer <= 0 {
		buffer = 256
	}
	e := &AsyncEmitter{
		events: make(chan Event, buffer),
		sinks:  sinks,
		done:   make(chan struct{}),
	}
	go e.run()
	return e
}

// Record enqueues an event without blocking. Events recorded sequentially
// by one call are delivered to sinks in that order.
func (e *AsyncEmitter) Record(ev Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}

	// The send is non-blocking, so holding the mutex here is cheap and
	// closes the race against Close closing the channel.
	select {
	case e.events <- ev:
	default:
		e.dropped++
		observability.TelemetryDroppedTotal.Inc()
		slog.Debug("telemetry buffer full, event dropped",
			"call_id", ev.CallID,
			"dropped_total", e.dropped,
		)
	}
}

// Dropped returns how many events were dropped due to a full buffer.
func (e *AsyncEmitter) Dropped() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dropped
}

// Close stops accepting events, drains the buffer to the sinks, and waits
// for delivery to finish.
func (e *AsyncEmitter) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	close(e.events)
	<-e.done
	return nil
}

func (e *AsyncEmitter) run() {
	defer close(e.done)
	for ev := range e.events {
		e.deliver(ev)
	}
}

func (e *AsyncEmitter) deliver(ev Event) {
	for _, sink := range e.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
		if err := sink.Write(ctx, ev); err != nil {
			slog.Debug("telemetry sink write failed",
				"call_id", ev.CallID,
				"error", err,
			)
		}
		cancel()
	}
}
