// Package retry executes provider calls under a bounded retry loop with
// exponential backoff. It is the sole retry authority: adapters never retry
// on their own, and every provider call in the system gets uniform behavior
// parameterized only by Policy.
package retry

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/tbuchner/relais/pkg/fault"
	"github.com/tbuchner/relais/pkg/observability"
	"github.com/tbuchner/relais/pkg/provider"
	"github.com/tbuchner/relais/pkg/telemetry"
)

// Controller wraps adapter calls with retries, backoff, timeouts, and
// per-attempt telemetry. Safe for concurrent use; all per-call state lives
// on the stack of Do.
type Controller struct {
	emitter telemetry.Emitter

	// sleep and rnd are replaceable in tests for deterministic timing.
	sleep func(ctx context.Context, d time.Duration) error
	rnd   func() float64
}

// New creates a Controller emitting telemetry to the given emitter.
// A nil emitter discards events.
func New(emitter telemetry.Emitter) *Controller {
	if emitter == nil {
		emitter = telemetry.Noop{}
	}
	return &Controller{
		emitter: emitter,
		sleep:   sleepContext,
		rnd:     rand.Float64,
	}
}

// Do executes the request against the adapter under the policy. It returns
// the first successful response, or the last normalized error annotated
// with the total number of attempts made.
//
// The policy's overall timeout bounds the whole loop, backoff waits
// included. When it fires, the loop aborts immediately with a timeout
// fault regardless of remaining attempts; this takes precedence over any
// per-attempt outcome that lands at the same instant.
func (c *Controller) Do(ctx context.Context, adapter provider.Adapter, req *provider.Request, pol Policy, callID string) (*provider.Response, error) {
	pol = pol.normalized()

	if pol.OverallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, pol.OverallTimeout)
		defer cancel()
	}

	for attempt := 1; ; attempt++ {
		resp, dur, rawErr := c.attempt(ctx, adapter, req, pol)

		if rawErr == nil {
			c.record(callID, req, attempt, dur, telemetry.OutcomeSuccess)
			return resp, nil
		}

		fe := adapter.MapError(rawErr)
		if fe == nil {
			fe = fault.Unknown(rawErr)
		}

		// Overall timeout or caller cancellation wins over whatever the
		// attempt itself reported.
		if ctx.Err() != nil {
			fe = abortFault(ctx, rawErr)
		}

		c.record(callID, req, attempt, dur, string(fe.Kind))

		if fe.Kind == fault.KindUnknown {
			// Unknown is retried, but flagged for investigation.
			slog.Warn("unclassified provider failure",
				"call_id", callID,
				"provider", req.Provider,
				"attempt", attempt,
				"error", rawErr,
			)
		}

		if ctx.Err() != nil || !pol.retryable(fe.Kind) || attempt >= pol.MaxAttempts {
			fe.Attempts = attempt
			return nil, fe
		}

		delay := c.backoffDelay(pol, attempt)

		// A backend retry-after hint floors the computed delay: we never
		// come back earlier than the backend asked for.
		if fe.RetryAfter > delay {
			delay = fe.RetryAfter
		}

		observability.RetryWaits.WithLabelValues(req.Provider).Observe(delay.Seconds())

		if err := c.sleep(ctx, delay); err != nil {
			fe := abortFault(ctx, err)
			fe.Attempts = attempt
			return nil, fe
		}
	}
}

// attempt runs one adapter call under the per-attempt timeout.
func (c *Controller) attempt(ctx context.Context, adapter provider.Adapter, req *provider.Request, pol Policy) (*provider.Response, time.Duration, error) {
	attemptCtx := ctx
	if pol.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, pol.AttemptTimeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := adapter.Complete(attemptCtx, req)
	return resp, time.Since(start), err
}

// backoffDelay computes min(base * multiplier^(attempt-1), max), optionally
// jittered uniformly in [0, delay].
func (c *Controller) backoffDelay(pol Policy, attempt int) time.Duration {
	d := float64(pol.BaseDelay) * math.Pow(pol.Multiplier, float64(attempt-1))
	if d > float64(pol.MaxDelay) {
		d = float64(pol.MaxDelay)
	}
	if pol.Jitter {
		d = d * c.rnd()
	}
	return time.Duration(d)
}

// record emits one telemetry event. Emission never blocks or fails.
func (c *Controller) record(callID string, req *provider.Request, attempt int, dur time.Duration, outcome string) {
	c.emitter.Record(telemetry.Event{
		CallID:    callID,
		Provider:  req.Provider,
		Model:     req.Model,
		Attempt:   attempt,
		Duration:  dur,
		Outcome:   outcome,
		Timestamp: time.Now(),
	})
}

// abortFault builds the terminal fault for an aborted loop: the overall
// timeout and caller cancellation both surface as timeout, with messages
// keeping the two distinguishable.
func abortFault(ctx context.Context, cause error) *fault.Error {
	if ctx.Err() == context.Canceled {
		return fault.Timeout("call canceled by caller").WithCause(cause)
	}
	return fault.Timeout("overall call timeout exceeded").WithCause(cause)
}

// sleepContext waits for d or until the context is done, whichever comes
// first. Pending backoff waits are cancellable: no orphaned retries run
// after the caller has given up.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
