package registry

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/tbuchner/relais/pkg/fault"
	"github.com/tbuchner/relais/pkg/provider"
)

// stubAdapter is a minimal adapter for registry tests.
type stubAdapter struct {
	desc   provider.Descriptor
	closed bool
}

func (s *stubAdapter) Name() string                  { return s.desc.ID }
func (s *stubAdapter) Describe() provider.Descriptor { return s.desc.Clone() }
func (s *stubAdapter) Complete(context.Context, *provider.Request) (*provider.Response, error) {
	return nil, errors.New("not implemented")
}
func (s *stubAdapter) MapError(err error) *fault.Error            { return fault.Unknown(err) }
func (s *stubAdapter) ListModels(context.Context) ([]string, error) { return s.desc.Models, nil }
func (s *stubAdapter) Close() error                               { s.closed = true; return nil }

func stub(id string, models ...string) *stubAdapter {
	return &stubAdapter{desc: provider.Descriptor{ID: id, DisplayName: id, Models: models}}
}

func TestRegisterAndResolve(t *testing.T) {
	r := New()
	if err := r.Register(stub("openai", "gpt-4o")); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	a, err := r.Resolve("openai")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got := a.Describe().ID; got != "openai" {
		t.Errorf("resolved adapter has id %q, want %q", got, "openai")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := New()
	if err := r.Register(stub("openai")); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	err := r.Register(stub("openai"))
	if !errors.Is(err, ErrDuplicateProvider) {
		t.Errorf("expected ErrDuplicateProvider, got %v", err)
	}
}

func TestRegisterEmptyIdentifier(t *testing.T) {
	r := New()
	if err := r.Register(stub("")); !errors.Is(err, ErrEmptyIdentifier) {
		t.Errorf("expected ErrEmptyIdentifier, got %v", err)
	}
}

func TestResolveUnknownIsProviderNotFound(t *testing.T) {
	r := New()
	if err := r.Register(stub("openai")); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, err := r.Resolve("nope")
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
	if got := fault.KindOf(err); got != fault.KindProviderNotFound {
		t.Errorf("expected provider_not_found, got %q", got)
	}
}

func TestListPreservesInsertionOrder(t *testing.T) {
	r := New()
	for _, id := range []string{"zeta", "alpha", "mid"} {
		if err := r.Register(stub(id)); err != nil {
			t.Fatalf("register %q failed: %v", id, err)
		}
	}

	var got []string
	for _, d := range r.List() {
		got = append(got, d.ID)
	}
	want := []string{"zeta", "alpha", "mid"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("list order = %v, want %v", got, want)
	}
}

func TestListIsIdempotent(t *testing.T) {
	r := New()
	r.Register(stub("a", "m1"))
	r.Register(stub("b", "m2"))

	first := r.List()
	second := r.List()
	if !reflect.DeepEqual(first, second) {
		t.Error("expected identical listings with no intervening registration")
	}

	// Mutating a returned slice must not affect the registry.
	first[0].Models[0] = "mutated"
	if r.List()[0].Models[0] != "m1" {
		t.Error("mutating a listing leaked into registry state")
	}
}

func TestCloseClosesAllAdapters(t *testing.T) {
	r := New()
	a, b := stub("a"), stub("b")
	r.Register(a)
	r.Register(b)

	if err := r.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if !a.closed || !b.closed {
		t.Error("expected all adapters to be closed")
	}
}
