// Package fault defines the normalized error taxonomy for provider calls.
//
// Every failure that leaves the dispatch core, whatever its origin, is a
// *fault.Error carrying one of the closed set of kinds below. Raw backend
// errors are retained as the wrapped cause for diagnostics but are never
// surfaced to callers directly.
package fault

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies a normalized provider failure.
type Kind string

const (
	KindAuthFailure           Kind = "auth_failure"
	KindRateLimited           Kind = "rate_limited"
	KindTimeout               Kind = "timeout"
	KindInvalidRequest        Kind = "invalid_request"
	KindUpstreamUnavailable   Kind = "upstream_unavailable"
	KindUpstreamInternalError Kind = "upstream_internal_error"
	KindProviderNotFound      Kind = "provider_not_found"
	KindUnknown               Kind = "unknown"
)

// Error is a normalized provider failure.
type Error struct {
	// Kind is the taxonomy member this failure maps to.
	Kind Kind `json:"kind"`

	// Message is a human-readable description.
	Message string `json:"message"`

	// Status is the upstream HTTP status code, if the failure originated
	// from an HTTP response (0 otherwise).
	Status int `json:"status,omitempty"`

	// RetryAfter is the backend's retry-after hint, if one was provided.
	RetryAfter time.Duration `json:"retry_after,omitempty"`

	// Attempts is the total number of attempts made before this error
	// became terminal. Zero means the retry controller did not annotate it.
	Attempts int `json:"attempts,omitempty"`

	// cause is the original provider-specific failure.
	cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("%s: %s (after %d attempts)", e.Kind, e.Message, e.Attempts)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the original provider-specific failure, if retained.
func (e *Error) Unwrap() error {
	return e.cause
}

// WithCause attaches the original failure and returns the error.
func (e *Error) WithCause(cause error) *Error {
	e.cause = cause
	return e
}

// New creates a normalized error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates a normalized error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// AuthFailure creates an auth_failure error.
func AuthFailure(message string) *Error {
	return New(KindAuthFailure, message)
}

// RateLimited creates a rate_limited error with an optional retry-after hint.
func RateLimited(message string, retryAfter time.Duration) *Error {
	return &Error{Kind: KindRateLimited, Message: message, RetryAfter: retryAfter}
}

// Timeout creates a timeout error.
func Timeout(message string) *Error {
	return New(KindTimeout, message)
}

// InvalidRequest creates an invalid_request error.
func InvalidRequest(message string) *Error {
	return New(KindInvalidRequest, message)
}

// UpstreamUnavailable creates an upstream_unavailable error.
func UpstreamUnavailable(message string) *Error {
	return New(KindUpstreamUnavailable, message)
}

// UpstreamInternal creates an upstream_internal_error error.
func UpstreamInternal(message string) *Error {
	return New(KindUpstreamInternalError, message)
}

// ProviderNotFound creates a provider_not_found error.
func ProviderNotFound(providerID string) *Error {
	return Newf(KindProviderNotFound, "provider %q is not registered", providerID)
}

// Unknown creates an unknown error wrapping the original failure.
func Unknown(cause error) *Error {
	msg := "unclassified provider failure"
	if cause != nil {
		msg = cause.Error()
	}
	return New(KindUnknown, msg).WithCause(cause)
}

// KindOf extracts the kind from an error. Returns KindUnknown for nil
// or non-normalized errors.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// As extracts a *Error from an error chain. Returns nil if none is present.
func As(err error) *Error {
	var fe *Error
	if errors.As(err, &fe) {
		return fe
	}
	return nil
}

// Retryable reports whether a kind is eligible for retry under the default
// policy. Auth and validation failures are terminal: repeating the identical
// request cannot succeed. Unknown is retried so that transient failures
// that defeat classification still get a second chance.
func Retryable(kind Kind) bool {
	switch kind {
	case KindRateLimited, KindTimeout, KindUpstreamUnavailable, KindUpstreamInternalError, KindUnknown:
		return true
	default:
		return false
	}
}
