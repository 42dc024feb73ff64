// Package registry holds all registered provider adapters, keyed by
// provider identifier. Registration happens at process startup (or config
// reload); afterwards the registry is read-mostly and supports concurrent
// Resolve/List without blocking.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tbuchner/relais/pkg/fault"
	"github.com/tbuchner/relais/pkg/provider"
)

// Registration errors. These surface at startup or config reload, not on
// the dispatch path, so they are plain sentinels rather than fault kinds.
var (
	ErrDuplicateProvider = errors.New("provider already registered")
	ErrEmptyIdentifier   = errors.New("provider descriptor has empty identifier")
)

// Registry maps provider identifiers to adapters and preserves insertion
// order for stable discovery listings.
type Registry struct {
	mu sync.RWMutex

	// order stores provider identifiers in registration order.
	order []string

	adapters map[string]provider.Adapter
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		adapters: make(map[string]provider.Adapter),
	}
}

// Register adds an adapter under its descriptor's identifier. Returns
// ErrDuplicateProvider if the identifier is already registered.
func (r *Registry) Register(adapter provider.Adapter) error {
	desc := adapter.Describe()
	if desc.ID == "" {
		return ErrEmptyIdentifier
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.adapters[desc.ID]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateProvider, desc.ID)
	}

	r.adapters[desc.ID] = adapter
	r.order = append(r.order, desc.ID)
	return nil
}

// Resolve returns the adapter for the given provider identifier, or a
// provider_not_found fault if unknown.
func (r *Registry) Resolve(providerID string) (provider.Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adapter, ok := r.adapters[providerID]
	if !ok {
		return nil, fault.ProviderNotFound(providerID)
	}
	return adapter, nil
}

// List returns descriptors for all registered providers in registration
// order. The result is a fresh slice on every call; callers may mutate it
// freely.
func (r *Registry) List() []provider.Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]provider.Descriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.adapters[id].Describe())
	}
	return out
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.adapters)
}

// Close closes all registered adapters. The first error encountered is
// returned; closing continues regardless.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for _, id := range r.order {
		if err := r.adapters[id].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
