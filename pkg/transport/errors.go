package transport

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/tbuchner/relais/pkg/fault"
)

// ErrorResponse is the uniform JSON error envelope.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries the normalized failure details.
type ErrorBody struct {
	Kind     string `json:"kind"`
	Message  string `json:"message"`
	Attempts int    `json:"attempts,omitempty"`
}

// StatusFromKind maps a fault kind to the HTTP status returned to clients.
// Upstream credential problems map to 502: the caller's request was fine,
// the gateway's configuration was not.
func StatusFromKind(kind fault.Kind) int {
	switch kind {
	case fault.KindInvalidRequest:
		return http.StatusBadRequest
	case fault.KindProviderNotFound:
		return http.StatusNotFound
	case fault.KindRateLimited:
		return http.StatusTooManyRequests
	case fault.KindTimeout:
		return http.StatusGatewayTimeout
	case fault.KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	case fault.KindAuthFailure, fault.KindUpstreamInternalError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteFault writes a normalized error as a JSON error response, deriving
// the HTTP status from the fault kind. A retry-after hint from the backend
// is forwarded as a Retry-After header.
func WriteFault(w http.ResponseWriter, fe *fault.Error) {
	if fe.RetryAfter > 0 {
		secs := int(fe.RetryAfter.Seconds())
		if secs < 1 {
			secs = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(secs))
	}
	writeError(w, StatusFromKind(fe.Kind), ErrorBody{
		Kind:     string(fe.Kind),
		Message:  fe.Message,
		Attempts: fe.Attempts,
	})
}

// WriteInvalidRequest writes a 400 response for malformed client input.
func WriteInvalidRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrorBody{
		Kind:    string(fault.KindInvalidRequest),
		Message: message,
	})
}

func writeError(w http.ResponseWriter, status int, body ErrorBody) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: body})
}
