package openaicompat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tbuchner/relais/pkg/provider"
)

func TestCompleteInjectsModelAndDisablesStream(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"cmpl-1","model":"test-model","usage":{"prompt_tokens":7,"completion_tokens":3,"total_tokens":10}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 5*time.Second)
	resp, err := c.Complete(context.Background(), &provider.Request{
		Provider: "test",
		Model:    "test-model",
		Payload:  json.RawMessage(`{"messages":[{"role":"user","content":"hi"}],"stream":true}`),
	})
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	if received["model"] != "test-model" {
		t.Errorf("expected model injected, got %v", received["model"])
	}
	if received["stream"] != false {
		t.Errorf("expected stream forced off, got %v", received["stream"])
	}
	if resp.Usage.TotalTokens != 10 {
		t.Errorf("expected usage extracted, got %+v", resp.Usage)
	}
	if resp.Model != "test-model" {
		t.Errorf("expected model from envelope, got %q", resp.Model)
	}
}

func TestCompleteSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"model":"m"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk-secret", 5*time.Second)
	if _, err := c.Complete(context.Background(), &provider.Request{Model: "m"}); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if gotAuth != "Bearer sk-secret" {
		t.Errorf("expected bearer header, got %q", gotAuth)
	}
}

func TestCompleteReturnsBackendErrorRaw(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"throttled"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 5*time.Second)
	_, err := c.Complete(context.Background(), &provider.Request{Model: "m"})

	var be *BackendError
	if !errors.As(err, &be) {
		t.Fatalf("expected *BackendError, got %T: %v", err, err)
	}
	if be.StatusCode != 429 {
		t.Errorf("expected status 429, got %d", be.StatusCode)
	}
	if be.RetryAfter != 3*time.Second {
		t.Errorf("expected retry-after 3s, got %v", be.RetryAfter)
	}
	if be.Message != "throttled" {
		t.Errorf("expected message from body, got %q", be.Message)
	}
}

func TestCompleteRejectsNonObjectPayload(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "", time.Second)
	_, err := c.Complete(context.Background(), &provider.Request{
		Model:   "m",
		Payload: json.RawMessage(`[1,2,3]`),
	})
	if err == nil {
		t.Fatal("expected error for non-object payload")
	}
}

func TestCompleteHonorsContextCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	c := NewClient(srv.URL, "", 30*time.Second)
	_, err := c.Complete(ctx, &provider.Request{Model: "m"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"data":[{"id":"m1"},{"id":"m2"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 5*time.Second)
	models, err := c.ListModels(context.Background())
	if err != nil {
		t.Fatalf("list models failed: %v", err)
	}
	if len(models) != 2 || models[0] != "m1" || models[1] != "m2" {
		t.Errorf("unexpected models: %v", models)
	}
}
