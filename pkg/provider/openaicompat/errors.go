package openaicompat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/tbuchner/relais/pkg/fault"
)

// BackendError is the raw representation of a non-2xx backend response.
// It carries everything MapError needs so that classification itself stays
// pure: the retry-after hint is parsed here, at response-read time.
type BackendError struct {
	StatusCode int
	Message    string
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned HTTP %d", e.StatusCode)
}

// newBackendError builds a BackendError from a non-2xx response, extracting
// the error message from the body and the Retry-After header if present.
func newBackendError(resp *http.Response) *BackendError {
	return &BackendError{
		StatusCode: resp.StatusCode,
		Message:    extractErrorMessage(resp.Body),
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
	}
}

// extractErrorMessage tries to parse the response body as a standard error
// envelope and returns the message if found.
func extractErrorMessage(body io.Reader) string {
	if body == nil {
		return ""
	}

	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}

	var errResp chatErrorResponse
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}

	return ""
}

// MapError classifies a raw failure from Complete or ListModels into the
// normalized taxonomy:
//
//	401/403                         auth_failure
//	429                             rate_limited (with retry-after hint)
//	400/404/405/413/415/422        invalid_request
//	502/503/504                     upstream_unavailable
//	other 5xx                       upstream_internal_error
//	connection/deadline failures    timeout
//	anything else                   unknown
//
// Already-normalized errors pass through untouched. The function is pure
// and safe to call from any goroutine.
func MapError(err error) *fault.Error {
	if err == nil {
		return nil
	}

	// Never re-wrap an already-normalized error.
	if fe := fault.As(err); fe != nil {
		return fe
	}

	var be *BackendError
	if errors.As(err, &be) {
		return mapStatus(be)
	}

	// Deadline and cancellation surface as timeout; the message keeps
	// the two distinguishable for callers.
	if errors.Is(err, context.DeadlineExceeded) {
		return fault.Timeout("backend call exceeded deadline").WithCause(err)
	}
	if errors.Is(err, context.Canceled) {
		return fault.Timeout("backend call canceled by caller").WithCause(err)
	}

	// Network-level failures: timeouts and connection errors.
	var ne net.Error
	if errors.As(err, &ne) {
		if ne.Timeout() {
			return fault.Timeout("backend connection timed out").WithCause(err)
		}
		return fault.Timeout(fmt.Sprintf("backend connection failed: %s", ne.Error())).WithCause(err)
	}

	return fault.Unknown(err)
}

// mapStatus translates an HTTP status code into the taxonomy.
func mapStatus(be *BackendError) *fault.Error {
	msg := be.Message

	switch {
	case be.StatusCode == http.StatusUnauthorized || be.StatusCode == http.StatusForbidden:
		if msg == "" {
			msg = "backend authentication failed"
		}
		fe := fault.AuthFailure(msg)
		fe.Status = be.StatusCode
		return fe.WithCause(be)

	case be.StatusCode == http.StatusTooManyRequests:
		if msg == "" {
			msg = "backend rate limit exceeded"
		}
		fe := fault.RateLimited(msg, be.RetryAfter)
		fe.Status = be.StatusCode
		return fe.WithCause(be)

	case be.StatusCode == http.StatusBadRequest,
		be.StatusCode == http.StatusNotFound,
		be.StatusCode == http.StatusMethodNotAllowed,
		be.StatusCode == http.StatusRequestEntityTooLarge,
		be.StatusCode == http.StatusUnsupportedMediaType,
		be.StatusCode == http.StatusUnprocessableEntity:
		if msg == "" {
			msg = fmt.Sprintf("backend rejected request (HTTP %d)", be.StatusCode)
		}
		fe := fault.InvalidRequest(msg)
		fe.Status = be.StatusCode
		return fe.WithCause(be)

	case be.StatusCode == http.StatusBadGateway,
		be.StatusCode == http.StatusServiceUnavailable,
		be.StatusCode == http.StatusGatewayTimeout:
		if msg == "" {
			msg = fmt.Sprintf("backend unavailable (HTTP %d)", be.StatusCode)
		}
		fe := fault.UpstreamUnavailable(msg)
		fe.Status = be.StatusCode
		fe.RetryAfter = be.RetryAfter
		return fe.WithCause(be)

	case be.StatusCode >= http.StatusInternalServerError:
		if msg == "" {
			msg = fmt.Sprintf("backend server error (HTTP %d)", be.StatusCode)
		}
		fe := fault.UpstreamInternal(msg)
		fe.Status = be.StatusCode
		return fe.WithCause(be)

	default:
		if msg == "" {
			msg = fmt.Sprintf("unexpected backend response (HTTP %d)", be.StatusCode)
		}
		fe := fault.New(fault.KindUnknown, msg)
		fe.Status = be.StatusCode
		return fe.WithCause(be)
	}
}
