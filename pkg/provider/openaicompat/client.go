package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tbuchner/relais/pkg/fault"
	"github.com/tbuchner/relais/pkg/provider"
)

// maxErrorBody limits how much of an error response body is read for
// message extraction.
const maxErrorBody = 4096

// Client performs HTTP requests against an OpenAI-compatible Chat
// Completions backend. Adapters embed this Client and delegate their
// Complete/ListModels calls to it.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string

	// ModelMapper is an optional function that transforms the model name
	// before sending it to the backend. If nil, the model name is used as-is.
	ModelMapper func(string) string
}

// NewClient creates a new Client for an OpenAI-compatible backend.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	// Normalize: remove trailing slash from base URL.
	baseURL = strings.TrimRight(baseURL, "/")

	if timeout == 0 {
		timeout = 120 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// Complete performs one non-streaming inference call against the Chat
// Completions endpoint. The request payload is forwarded opaquely with the
// model injected; streaming is always forced off.
//
// Non-2xx responses are returned as *BackendError. Transport failures are
// returned unwrapped so MapError can classify them.
func (c *Client) Complete(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	model := req.Model
	if c.ModelMapper != nil {
		model = c.ModelMapper(model)
	}

	body, err := buildBody(req.Payload, model)
	if err != nil {
		return nil, err
	}

	url := c.baseURL + "/v1/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, newBackendError(httpResp)
	}

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	// Pull model and usage out of the otherwise opaque body.
	var env completionEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &BackendError{
			StatusCode: httpResp.StatusCode,
			Message:    fmt.Sprintf("malformed backend response: %s", err.Error()),
		}
	}

	respModel := env.Model
	if respModel == "" {
		respModel = model
	}

	return &provider.Response{
		Provider: req.Provider,
		Model:    respModel,
		Body:     raw,
		Usage: provider.Usage{
			InputTokens:  env.Usage.PromptTokens,
			OutputTokens: env.Usage.CompletionTokens,
			TotalTokens:  env.Usage.TotalTokens,
		},
	}, nil
}

// ListModels returns the model identifiers served by the backend by
// querying the /v1/models endpoint.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	url := c.baseURL + "/v1/models"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}

	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, newBackendError(httpResp)
	}

	var listing modelsResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("parsing models response: %w", err)
	}

	models := make([]string, 0, len(listing.Data))
	for _, m := range listing.Data {
		models = append(models, m.ID)
	}
	return models, nil
}

// Close releases client resources.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// buildBody injects the model into the opaque payload and forces streaming
// off. An empty payload yields a body containing only the model. A payload
// that is not a JSON object is rejected as invalid_request so that the
// failure is never retried.
func buildBody(payload json.RawMessage, model string) ([]byte, error) {
	fields := make(map[string]any)
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &fields); err != nil {
			return nil, fault.InvalidRequest("request payload is not a JSON object").WithCause(err)
		}
	}
	fields["model"] = model
	fields["stream"] = false
	return json.Marshal(fields)
}

// parseRetryAfter interprets a Retry-After header value: either delay
// seconds or an HTTP date. Returns 0 if the value is absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(value); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
