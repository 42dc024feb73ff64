// Package litellm implements the Adapter interface for LiteLLM proxy
// servers. LiteLLM exposes an OpenAI-compatible Chat Completions API, so
// this adapter delegates all HTTP communication to the shared
// openaicompat.Client and adds LiteLLM-specific model mapping support.
package litellm

import (
	"context"
	"fmt"
	"time"

	"github.com/tbuchner/relais/pkg/fault"
	"github.com/tbuchner/relais/pkg/provider"
	"github.com/tbuchner/relais/pkg/provider/openaicompat"
)

// Adapter dispatches normalized requests through a LiteLLM proxy.
type Adapter struct {
	cfg    Config
	client *openaicompat.Client
	desc   provider.Descriptor
}

// Ensure Adapter implements provider.Adapter at compile time.
var _ provider.Adapter = (*Adapter)(nil)

// New creates a new Adapter with the given configuration.
// Returns an error if the configuration is invalid.
func New(cfg Config) (*Adapter, error) {
	if cfg.ID == "" {
		cfg.ID = "litellm"
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("litellm: BaseURL is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	client := openaicompat.NewClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout)

	// If model mapping is configured, set a mapper on the client.
	if len(cfg.ModelMapping) > 0 {
		mapping := cfg.ModelMapping
		client.ModelMapper = func(model string) string {
			if mapped, ok := mapping[model]; ok {
				return mapped
			}
			return model
		}
	}

	displayName := cfg.DisplayName
	if displayName == "" {
		displayName = "LiteLLM"
	}

	return &Adapter{
		cfg:    cfg,
		client: client,
		desc: provider.Descriptor{
			ID:          cfg.ID,
			DisplayName: displayName,
			Models:      append([]string(nil), cfg.Models...),
			Capabilities: provider.Capabilities{
				Streaming:       true,
				FunctionCalling: true,
			},
		},
	}, nil
}

// Name returns the provider identifier.
func (a *Adapter) Name() string {
	return a.desc.ID
}

// Describe returns a copy of the provider descriptor.
func (a *Adapter) Describe() provider.Descriptor {
	return a.desc.Clone()
}

// Complete performs one non-streaming inference call through the proxy.
// When model mapping rewrote the model name, the response reports the
// caller's original name, not the mapped backend name.
func (a *Adapter) Complete(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	resp, err := a.client.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	if _, mapped := a.cfg.ModelMapping[req.Model]; mapped {
		resp.Model = req.Model
	}
	return resp, nil
}

// MapError classifies a raw failure into the normalized taxonomy.
func (a *Adapter) MapError(err error) *fault.Error {
	return openaicompat.MapError(err)
}

// ListModels returns available models from the proxy.
func (a *Adapter) ListModels(ctx context.Context) ([]string, error) {
	return a.client.ListModels(ctx)
}

// Close releases adapter resources.
func (a *Adapter) Close() error {
	return a.client.Close()
}
