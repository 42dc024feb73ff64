package litellm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tbuchner/relais/pkg/provider"
)

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error for missing BaseURL")
	}
}

func TestDefaultIdentifier(t *testing.T) {
	a, err := New(Config{BaseURL: "http://localhost:4000"})
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	if a.Name() != "litellm" {
		t.Errorf("expected default id litellm, got %q", a.Name())
	}
	if a.Describe().DisplayName != "LiteLLM" {
		t.Errorf("expected default display name, got %q", a.Describe().DisplayName)
	}
}

func TestModelMappingApplied(t *testing.T) {
	var sentModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		sentModel, _ = body["model"].(string)
		w.Write([]byte(`{"model":"openai/gpt-4"}`))
	}))
	defer srv.Close()

	a, err := New(Config{
		BaseURL:      srv.URL,
		ModelMapping: map[string]string{"gpt-4": "openai/gpt-4"},
	})
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	defer a.Close()

	if _, err := a.Complete(context.Background(), &provider.Request{Model: "gpt-4"}); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if sentModel != "openai/gpt-4" {
		t.Errorf("expected mapped model, got %q", sentModel)
	}
}

func TestUnmappedModelPassesThrough(t *testing.T) {
	var sentModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		sentModel, _ = body["model"].(string)
		w.Write([]byte(`{"model":"local-model"}`))
	}))
	defer srv.Close()

	a, err := New(Config{
		BaseURL:      srv.URL,
		ModelMapping: map[string]string{"gpt-4": "openai/gpt-4"},
	})
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	defer a.Close()

	if _, err := a.Complete(context.Background(), &provider.Request{Model: "local-model"}); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if sentModel != "local-model" {
		t.Errorf("expected pass-through model, got %q", sentModel)
	}
}
