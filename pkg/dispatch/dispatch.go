// Package dispatch is the single entry point for provider calls. It resolves
// the target adapter, applies the effective retry policy, and normalizes
// every failure into the closed fault taxonomy before it reaches callers.
package dispatch

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tbuchner/relais/pkg/fault"
	"github.com/tbuchner/relais/pkg/observability"
	"github.com/tbuchner/relais/pkg/provider"
	"github.com/tbuchner/relais/pkg/provider/registry"
	"github.com/tbuchner/relais/pkg/retry"
	"github.com/tbuchner/relais/pkg/telemetry"
)

// PolicyFunc returns the retry policy to apply for a provider. It is called
// per dispatch so policy changes from config reloads take effect without
// restarting.
type PolicyFunc func(providerID string) retry.Policy

// Dispatcher routes completion calls to registered provider adapters.
type Dispatcher struct {
	registry *registry.Registry
	retrier  *retry.Controller
	policy   PolicyFunc
	logger   *slog.Logger
}

// New creates a Dispatcher. A nil policy func falls back to the default
// policy for every provider.
func New(reg *registry.Registry, emitter telemetry.Emitter, policy PolicyFunc) *Dispatcher {
	if policy == nil {
		policy = func(string) retry.Policy { return retry.DefaultPolicy() }
	}
	return &Dispatcher{
		registry: reg,
		retrier:  retry.New(emitter),
		policy:   policy,
		logger:   slog.Default().With("component", "dispatch"),
	}
}

// Dispatch executes a completion call against the named provider. The
// payload is passed through opaquely; only the model field is managed here.
// Every returned error is a *fault.Error.
func (d *Dispatcher) Dispatch(ctx context.Context, providerID, model string, payload json.RawMessage, ov *provider.Overrides) (*provider.Response, error) {
	callID := uuid.NewString()
	start := time.Now()

	adapter, err := d.registry.Resolve(providerID)
	if err != nil {
		fe := normalize(err)
		d.finish(providerID, model, string(fe.Kind))
		return nil, fe
	}

	pol := d.policy(providerID).WithOverrides(ov)

	req := &provider.Request{
		Provider:  providerID,
		Model:     model,
		Payload:   payload,
		Overrides: ov,
	}

	resp, err := d.retrier.Do(ctx, adapter, req, pol, callID)
	if err != nil {
		fe := normalize(err)
		d.finish(providerID, model, string(fe.Kind))
		d.logger.Warn("dispatch failed",
			"call_id", callID,
			"provider", providerID,
			"model", model,
			"kind", fe.Kind,
			"attempts", fe.Attempts,
			"duration", time.Since(start),
		)
		return nil, fe
	}

	d.finish(providerID, model, telemetry.OutcomeSuccess)
	d.logger.Info("dispatch completed",
		"call_id", callID,
		"provider", providerID,
		"model", model,
		"duration", time.Since(start),
	)
	return resp, nil
}

// ListProviders returns the descriptors of all registered providers in
// registration order.
func (d *Dispatcher) ListProviders() []provider.Descriptor {
	return d.registry.List()
}

// ListModels queries the named provider for its currently served models.
func (d *Dispatcher) ListModels(ctx context.Context, providerID string) ([]string, error) {
	adapter, err := d.registry.Resolve(providerID)
	if err != nil {
		return nil, normalize(err)
	}
	models, err := adapter.ListModels(ctx)
	if err != nil {
		return nil, normalize(adapter.MapError(err))
	}
	return models, nil
}

// finish records the terminal outcome of one dispatch call. Per-attempt
// latency is observed by the telemetry metrics sink, not here.
func (d *Dispatcher) finish(providerID, model, outcome string) {
	observability.DispatchCallsTotal.WithLabelValues(providerID, model, outcome).Inc()
}

// normalize guarantees the closed taxonomy at the facade boundary: already
// normalized errors pass through untouched, anything else becomes unknown.
func normalize(err error) *fault.Error {
	if fe := fault.As(err); fe != nil {
		return fe
	}
	return fault.Unknown(err)
}
