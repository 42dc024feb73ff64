// Package factory builds provider adapters and registries from
// configuration entries.
package factory

import (
	"fmt"

	"github.com/tbuchner/relais/pkg/config"
	"github.com/tbuchner/relais/pkg/provider"
	"github.com/tbuchner/relais/pkg/provider/litellm"
	"github.com/tbuchner/relais/pkg/provider/openai"
	"github.com/tbuchner/relais/pkg/provider/registry"
)

// NewAdapter creates the adapter for a single provider entry.
func NewAdapter(pc config.ProviderConfig) (provider.Adapter, error) {
	switch pc.Type {
	case "", "openai":
		return openai.New(openai.Config{
			ID:          pc.Name,
			DisplayName: pc.DisplayName,
			BaseURL:     pc.BaseURL,
			APIKey:      pc.APIKey,
			Timeout:     pc.Timeout,
			Models:      pc.Models,
		})
	case "litellm":
		return litellm.New(litellm.Config{
			ID:           pc.Name,
			DisplayName:  pc.DisplayName,
			BaseURL:      pc.BaseURL,
			APIKey:       pc.APIKey,
			Timeout:      pc.Timeout,
			Models:       pc.Models,
			ModelMapping: pc.ModelMapping,
		})
	default:
		return nil, fmt.Errorf("unknown provider type %q for provider %q", pc.Type, pc.Name)
	}
}

// BuildRegistry creates and populates a registry from the configured
// provider entries, in configuration order. Any already-created adapters
// are closed on failure.
func BuildRegistry(providers []config.ProviderConfig) (*registry.Registry, error) {
	reg := registry.New()
	for _, pc := range providers {
		adapter, err := NewAdapter(pc)
		if err != nil {
			reg.Close()
			return nil, err
		}
		if err := reg.Register(adapter); err != nil {
			adapter.Close()
			reg.Close()
			return nil, fmt.Errorf("registering provider %q: %w", pc.Name, err)
		}
	}
	return reg, nil
}
