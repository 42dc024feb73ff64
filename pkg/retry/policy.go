package retry

import (
	"time"

	"github.com/tbuchner/relais/pkg/fault"
	"github.com/tbuchner/relais/pkg/provider"
)

// Policy governs how a call is retried. A Policy value is a snapshot taken
// per call: concurrent configuration reloads never affect an in-flight call.
type Policy struct {
	// MaxAttempts caps the number of tries, including the first (default: 3).
	MaxAttempts int

	// BaseDelay is the wait before the first retry (default: 500ms).
	BaseDelay time.Duration

	// Multiplier grows the delay per attempt (default: 2.0).
	Multiplier float64

	// MaxDelay caps the computed delay (default: 30s).
	MaxDelay time.Duration

	// Jitter randomizes each computed delay uniformly in [0, delay].
	Jitter bool

	// AttemptTimeout bounds a single attempt (0: no per-attempt bound
	// beyond the adapter's own HTTP timeout).
	AttemptTimeout time.Duration

	// OverallTimeout bounds the entire retry loop including backoff waits
	// (0: unbounded).
	OverallTimeout time.Duration

	// RetryableKinds overrides the per-kind retry eligibility table.
	// Nil means the default table from the fault package.
	RetryableKinds map[fault.Kind]bool
}

// DefaultPolicy returns retry defaults suited for LLM backends.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		Multiplier:  2.0,
		MaxDelay:    30 * time.Second,
		Jitter:      true,
	}
}

// normalized fills unset fields with defaults.
func (p Policy) normalized() Policy {
	def := DefaultPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = def.MaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = def.BaseDelay
	}
	if p.Multiplier < 1 {
		p.Multiplier = def.Multiplier
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = def.MaxDelay
	}
	return p
}

// retryable reports whether the kind is eligible for another attempt under
// this policy.
func (p Policy) retryable(kind fault.Kind) bool {
	if p.RetryableKinds != nil {
		return p.RetryableKinds[kind]
	}
	return fault.Retryable(kind)
}

// WithOverrides returns a copy of the policy with per-call overrides
// applied. Zero-valued override fields leave the policy untouched.
func (p Policy) WithOverrides(ov *provider.Overrides) Policy {
	if ov == nil {
		return p
	}
	if ov.MaxAttempts > 0 {
		p.MaxAttempts = ov.MaxAttempts
	}
	if ov.Timeout > 0 {
		p.AttemptTimeout = ov.Timeout
	}
	if ov.OverallTimeout > 0 {
		p.OverallTimeout = ov.OverallTimeout
	}
	return p
}
