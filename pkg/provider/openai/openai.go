// Package openai implements the Adapter interface for OpenAI and directly
// OpenAI-compatible backends. It is the reference adapter: all HTTP
// communication is delegated to the shared openaicompat.Client.
package openai

import (
	"context"

	"github.com/tbuchner/relais/pkg/fault"
	"github.com/tbuchner/relais/pkg/provider"
	"github.com/tbuchner/relais/pkg/provider/openaicompat"
)

// Adapter dispatches normalized requests to an OpenAI-compatible backend.
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
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Adapter{
		cfg:    cfg,
		client: openaicompat.NewClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout),
		desc: provider.Descriptor{
			ID:          cfg.ID,
			DisplayName: cfg.DisplayName,
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

// Complete performs one non-streaming inference call.
func (a *Adapter) Complete(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	return a.client.Complete(ctx, req)
}

// MapError classifies a raw failure into the normalized taxonomy.
func (a *Adapter) MapError(err error) *fault.Error {
	return openaicompat.MapError(err)
}

// ListModels queries the backend for currently served models.
func (a *Adapter) ListModels(ctx context.Context) ([]string, error) {
	return a.client.ListModels(ctx)
}

// Close releases adapter resources.
func (a *Adapter) Close() error {
	return a.client.Close()
}
