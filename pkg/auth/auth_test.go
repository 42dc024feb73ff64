package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// voteAuthenticator returns a fixed result.
type voteAuthenticator struct {
	result Result
	called bool
}

func (v *voteAuthenticator) Authenticate(_ context.Context, _ *http.Request) Result {
	v.called = true
	return v.result
}

func newRequest() *http.Request {
	return httptest.NewRequest(http.MethodPost, "/v1/dispatch", nil)
}

func TestChainStopsOnYes(t *testing.T) {
	first := &voteAuthenticator{result: Result{Decision: Yes, Identity: &Identity{Subject: "alice"}}}
	second := &voteAuthenticator{result: Result{Decision: No, Err: errors.New("should not run")}}
	chain := &Chain{Authenticators: []Authenticator{first, second}}

	result := chain.Authenticate(context.Background(), newRequest())
	if result.Decision != Yes || result.Identity.Subject != "alice" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if second.called {
		t.Error("chain did not stop on first Yes")
	}
}

func TestChainStopsOnNo(t *testing.T) {
	first := &voteAuthenticator{result: Result{Decision: No, Err: ErrUnauthenticated}}
	second := &voteAuthenticator{result: Result{Decision: Yes, Identity: &Identity{Subject: "x"}}}
	chain := &Chain{Authenticators: []Authenticator{first, second}}

	result := chain.Authenticate(context.Background(), newRequest())
	if result.Decision != No {
		t.Fatalf("unexpected result: %+v", result)
	}
	if second.called {
		t.Error("chain did not stop on first No")
	}
}

func TestChainSkipsAbstain(t *testing.T) {
	first := &voteAuthenticator{result: Result{Decision: Abstain}}
	second := &voteAuthenticator{result: Result{Decision: Yes, Identity: &Identity{Subject: "bob"}}}
	chain := &Chain{Authenticators: []Authenticator{first, second}}

	result := chain.Authenticate(context.Background(), newRequest())
	if result.Decision != Yes || result.Identity.Subject != "bob" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestChainDefaultDecision(t *testing.T) {
	abstainer := &voteAuthenticator{result: Result{Decision: Abstain}}

	open := &Chain{Authenticators: []Authenticator{abstainer}, DefaultDecision: Yes}
	result := open.Authenticate(context.Background(), newRequest())
	if result.Decision != Yes || result.Identity.Subject != "anonymous" {
		t.Errorf("expected anonymous identity, got %+v", result)
	}

	closed := &Chain{Authenticators: []Authenticator{abstainer}, DefaultDecision: No}
	result = closed.Authenticate(context.Background(), newRequest())
	if result.Decision != No || !errors.Is(result.Err, ErrUnauthenticated) {
		t.Errorf("expected rejection, got %+v", result)
	}
}

func TestBearerToken(t *testing.T) {
	r := newRequest()
	if _, ok := BearerToken(r); ok {
		t.Error("expected no token without Authorization header")
	}

	r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	if _, ok := BearerToken(r); ok {
		t.Error("expected no token for Basic scheme")
	}

	r.Header.Set("Authorization", "Bearer tok-123")
	token, ok := BearerToken(r)
	if !ok || token != "tok-123" {
		t.Errorf("unexpected token %q ok=%v", token, ok)
	}
}
