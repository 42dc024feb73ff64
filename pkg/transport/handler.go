package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/tbuchner/relais/pkg/fault"
	"github.com/tbuchner/relais/pkg/provider"
)

// Dispatcher is the handler contract between the transport layer and the
// dispatch facade.
type Dispatcher interface {
	Dispatch(ctx context.Context, providerID, model string, payload json.RawMessage, ov *provider.Overrides) (*provider.Response, error)
	ListProviders() []provider.Descriptor
	ListModels(ctx context.Context, providerID string) ([]string, error)
}

// DispatchRequest is the JSON body of POST /v1/dispatch. The payload is
// passed to the provider opaquely.
type DispatchRequest struct {
	Provider  string           `json:"provider"`
	Model     string           `json:"model"`
	Payload   json.RawMessage  `json:"payload"`
	Overrides *OverridesParams `json:"overrides,omitempty"`
}

// OverridesParams carries per-call retry and timeout overrides. Durations
// are expressed in milliseconds.
type OverridesParams struct {
	TimeoutMS        int64 `json:"timeout_ms,omitempty"`
	OverallTimeoutMS int64 `json:"overall_timeout_ms,omitempty"`
	MaxAttempts      int   `json:"max_attempts,omitempty"`
}

func (o *OverridesParams) toOverrides() *provider.Overrides {
	if o == nil {
		return nil
	}
	return &provider.Overrides{
		Timeout:        time.Duration(o.TimeoutMS) * time.Millisecond,
		OverallTimeout: time.Duration(o.OverallTimeoutMS) * time.Millisecond,
		MaxAttempts:    o.MaxAttempts,
	}
}

// DispatchResponse is the JSON body returned by POST /v1/dispatch.
type DispatchResponse struct {
	Provider string          `json:"provider"`
	Model    string          `json:"model"`
	Usage    provider.Usage  `json:"usage"`
	Output   json.RawMessage `json:"output"`
}

// ProviderList is the JSON body returned by GET /v1/providers.
type ProviderList struct {
	Providers []provider.Descriptor `json:"providers"`
}

// ModelList is the JSON body returned by GET /v1/providers/{id}/models.
type ModelList struct {
	Provider string   `json:"provider"`
	Models   []string `json:"models"`
}

// API holds the HTTP handlers for the dispatch surface.
type API struct {
	dispatcher  Dispatcher
	maxBodySize int64
}

// NewAPI creates the handler set. maxBodySize bounds dispatch request
// bodies; zero means the 10 MB default.
func NewAPI(d Dispatcher, maxBodySize int64) *API {
	if maxBodySize <= 0 {
		maxBodySize = 10 << 20
	}
	return &API{dispatcher: d, maxBodySize: maxBodySize}
}

// Routes registers the API handlers on the mux.
func (a *API) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/dispatch", a.handleDispatch)
	mux.HandleFunc("GET /v1/providers", a.handleListProviders)
	mux.HandleFunc("GET /v1/providers/{id}/models", a.handleListModels)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleHealth)
}

func (a *API) handleDispatch(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, a.maxBodySize))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			WriteInvalidRequest(w, "request body too large")
			return
		}
		WriteInvalidRequest(w, "reading request body: "+err.Error())
		return
	}

	var req DispatchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		WriteInvalidRequest(w, "parsing request: "+err.Error())
		return
	}
	if req.Provider == "" {
		WriteInvalidRequest(w, "provider is required")
		return
	}
	if req.Model == "" {
		WriteInvalidRequest(w, "model is required")
		return
	}

	resp, err := a.dispatcher.Dispatch(r.Context(), req.Provider, req.Model, req.Payload, req.Overrides.toOverrides())
	if err != nil {
		WriteFault(w, asFault(err))
		return
	}

	writeJSON(w, http.StatusOK, DispatchResponse{
		Provider: resp.Provider,
		Model:    resp.Model,
		Usage:    resp.Usage,
		Output:   resp.Body,
	})
}

func (a *API) handleListProviders(w http.ResponseWriter, r *http.Request) {
	descriptors := a.dispatcher.ListProviders()
	if descriptors == nil {
		descriptors = []provider.Descriptor{}
	}
	writeJSON(w, http.StatusOK, ProviderList{Providers: descriptors})
}

func (a *API) handleListModels(w http.ResponseWriter, r *http.Request) {
	providerID := r.PathValue("id")

	models, err := a.dispatcher.ListModels(r.Context(), providerID)
	if err != nil {
		WriteFault(w, asFault(err))
		return
	}
	if models == nil {
		models = []string{}
	}
	writeJSON(w, http.StatusOK, ModelList{Provider: providerID, Models: models})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// asFault keeps the error envelope uniform even if a non-normalized error
// slips through the facade.
func asFault(err error) *fault.Error {
	if fe := fault.As(err); fe != nil {
		return fe
	}
	return fault.Unknown(err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
