package provider

import (
	"encoding/json"
	"time"
)

// Capabilities declares what features a backend supports. Exposed through
// discovery so front ends can filter providers by feature.
type Capabilities struct {
	// Streaming indicates whether the provider supports streaming responses.
	Streaming bool `json:"streaming"`

	// FunctionCalling indicates whether the provider supports tool calls.
	FunctionCalling bool `json:"function_calling"`

	// Vision indicates whether the provider supports image inputs.
	Vision bool `json:"vision"`
}

// Descriptor identifies a registered provider. Created once at registration
// and immutable afterward.
type Descriptor struct {
	// ID is the unique provider identifier used for dispatch routing.
	ID string `json:"id"`

	// DisplayName is the human-readable name shown in discovery.
	DisplayName string `json:"display_name"`

	// Models lists the model identifiers this provider serves.
	Models []string `json:"models"`

	// Capabilities are the feature flags for this provider.
	Capabilities Capabilities `json:"capabilities"`
}

// Clone returns a deep copy so callers cannot mutate registered state.
func (d Descriptor) Clone() Descriptor {
	out := d
	out.Models = append([]string(nil), d.Models...)
	return out
}

// Overrides carries per-call parameters that take precedence over the
// globally configured retry policy. Zero values mean "use the policy value".
type Overrides struct {
	// Timeout bounds a single attempt.
	Timeout time.Duration `json:"timeout,omitempty"`

	// OverallTimeout bounds the entire retry loop.
	OverallTimeout time.Duration `json:"overall_timeout,omitempty"`

	// MaxAttempts caps the number of attempts.
	MaxAttempts int `json:"max_attempts,omitempty"`
}

// Request is the normalized call contract. The payload is opaque to the
// core: adapters forward it to their backend after injecting the model.
//
// A Request is owned by a single call execution and is never shared across
// concurrent calls.
type Request struct {
	// Provider is the target provider identifier.
	Provider string `json:"provider"`

	// Model is the model identifier within the provider.
	Model string `json:"model"`

	// Payload is the backend-bound request body, opaque to the core.
	Payload json.RawMessage `json:"payload"`

	// Overrides are optional per-call parameter overrides.
	Overrides *Overrides `json:"overrides,omitempty"`
}

// Usage reports token consumption when the backend provides it.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Response is the backend's complete response. The body is passed through
// opaquely; the core only cares about success or failure classification.
type Response struct {
	// Provider is the identifier of the adapter that served the call.
	Provider string `json:"provider"`

	// Model is the model that produced the response (as reported by the
	// backend, which may differ from the requested model after mapping).
	Model string `json:"model"`

	// Body is the raw backend response body.
	Body json.RawMessage `json:"body"`

	// Usage holds token counts if the backend reported them.
	Usage Usage `json:"usage"`
}
