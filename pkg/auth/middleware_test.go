package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func okHandler(captured **Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			*captured = IdentityFromContext(r.Context())
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddlewareRejectsOnNo(t *testing.T) {
	chain := &Chain{DefaultDecision: No}
	handler := Middleware(chain, nil)(okHandler(nil))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/dispatch", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "auth_failure") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type %q", ct)
	}
}

func TestMiddlewareInjectsIdentity(t *testing.T) {
	chain := &Chain{Authenticators: []Authenticator{
		&voteAuthenticator{result: Result{Decision: Yes, Identity: &Identity{Subject: "alice"}}},
	}}
	var got *Identity
	handler := Middleware(chain, nil)(okHandler(&got))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/dispatch", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got == nil || got.Subject != "alice" {
		t.Errorf("identity not injected: %+v", got)
	}
}

func TestMiddlewareBypass(t *testing.T) {
	chain := &Chain{DefaultDecision: No}
	handler := Middleware(chain, DefaultBypassEndpoints)(okHandler(nil))

	for _, path := range DefaultBypassEndpoints {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected bypass, got %d", path, rec.Code)
		}
	}
}

func TestMiddlewareEmptySubject(t *testing.T) {
	chain := &Chain{Authenticators: []Authenticator{
		&voteAuthenticator{result: Result{Decision: Yes, Identity: &Identity{}}},
	}}
	handler := Middleware(chain, nil)(okHandler(nil))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/dispatch", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for empty subject, got %d", rec.Code)
	}
}

func TestIdentityContextRoundTrip(t *testing.T) {
	id := &Identity{Subject: "svc", Scopes: []string{"dispatch"}}
	ctx := SetIdentity(context.Background(), id)
	if got := IdentityFromContext(ctx); got != id {
		t.Errorf("unexpected identity %+v", got)
	}
	if got := IdentityFromContext(context.Background()); got != nil {
		t.Errorf("expected nil identity, got %+v", got)
	}
}
