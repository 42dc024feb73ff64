package provider

import (
	"context"

	"github.com/tbuchner/relais/pkg/fault"
)

// Adapter abstracts one LLM backend. Each adapter translates the normalized
// request into its backend's native protocol and classifies backend failures
// into the fault taxonomy.
//
// Adapters perform exactly one network call per Complete invocation. They
// never retry (the retry controller owns retries) and never suppress context
// cancellation. Implementations must be safe for concurrent use by multiple
// goroutines.
type Adapter interface {
	// Name returns the provider identifier (e.g., "openai", "litellm").
	Name() string

	// Describe returns the provider descriptor: identifier, display name,
	// served models, and capability flags. The returned value is a copy;
	// descriptors are immutable after registration.
	Describe() Descriptor

	// Complete performs one non-streaming inference call. Failures are
	// returned raw (backend-specific); callers classify them with MapError.
	Complete(ctx context.Context, req *Request) (*Response, error)

	// MapError classifies a raw failure from Complete into the normalized
	// taxonomy. It is pure: no I/O, no shared state.
	MapError(err error) *fault.Error

	// ListModels queries the backend for currently served models.
	ListModels(ctx context.Context) ([]string, error)

	// Close releases adapter resources (HTTP clients, connections).
	Close() error
}
