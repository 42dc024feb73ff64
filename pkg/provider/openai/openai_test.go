package openai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tbuchner/relais/pkg/fault"
	"github.com/tbuchner/relais/pkg/provider"
)

func TestNewValidation(t *testing.T) {
	if _, err := New(Config{BaseURL: "http://x"}); err == nil {
		t.Error("expected error for missing ID")
	}
	if _, err := New(Config{ID: "openai"}); err == nil {
		t.Error("expected error for missing BaseURL")
	}
}

func TestDescribeReturnsCopy(t *testing.T) {
	a, err := New(Config{ID: "openai", DisplayName: "OpenAI", BaseURL: "http://x", Models: []string{"gpt-4o"}})
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	d := a.Describe()
	d.Models[0] = "mutated"

	if a.Describe().Models[0] != "gpt-4o" {
		t.Error("mutating a Describe result leaked into adapter state")
	}
}

func TestCompleteAndMapErrorRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	}))
	defer srv.Close()

	a, err := New(Config{ID: "openai", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	defer a.Close()

	_, rawErr := a.Complete(context.Background(), &provider.Request{Model: "gpt-4o"})
	if rawErr == nil {
		t.Fatal("expected raw failure from Complete")
	}

	fe := a.MapError(rawErr)
	if fe.Kind != fault.KindAuthFailure {
		t.Errorf("expected auth_failure, got %q", fe.Kind)
	}
	if fe.Message != "invalid api key" {
		t.Errorf("expected backend message, got %q", fe.Message)
	}
}
