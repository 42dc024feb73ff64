package integration

import (
	"net/http"
	"testing"

	"github.com/tbuchner/relais/pkg/transport"
)

func TestDispatchSuccess(t *testing.T) {
	resp := postJSON(t, testEnv.BaseURL()+"/v1/dispatch", dispatchBody("mock", "mock-model"))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp))
	}

	var dr transport.DispatchResponse
	decodeJSON(t, resp, &dr)

	if dr.Provider != "mock" || dr.Model != "mock-model" {
		t.Errorf("unexpected response: %+v", dr)
	}
	if dr.Usage.TotalTokens != 10 {
		t.Errorf("unexpected usage: %+v", dr.Usage)
	}
	if len(dr.Output) == 0 {
		t.Error("expected raw backend output")
	}
}

func TestDispatchRetriesTransientFailures(t *testing.T) {
	// mock-flaky fails twice with 503, then succeeds; three attempts fit
	// inside the configured budget.
	resp := postJSON(t, testEnv.BaseURL()+"/v1/dispatch", dispatchBody("mock", "mock-flaky"))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected retries to recover, got %d: %s", resp.StatusCode, readBody(t, resp))
	}
}

func TestDispatchModelMapping(t *testing.T) {
	resp := postJSON(t, testEnv.BaseURL()+"/v1/dispatch", dispatchBody("proxy", "alias-model"))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp))
	}

	var dr transport.DispatchResponse
	decodeJSON(t, resp, &dr)

	// The caller keeps its alias; the backend saw the mapped name.
	if dr.Model != "alias-model" {
		t.Errorf("expected requested model echoed, got %q", dr.Model)
	}
}

func TestDispatchOverridesCapAttempts(t *testing.T) {
	body := dispatchBody("mock", "mock-503")
	body["overrides"] = map[string]any{"max_attempts": 1}

	resp := postJSON(t, testEnv.BaseURL()+"/v1/dispatch", body)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}

	var er transport.ErrorResponse
	decodeJSON(t, resp, &er)
	if er.Error.Attempts != 1 {
		t.Errorf("expected 1 attempt with override, got %d", er.Error.Attempts)
	}
}
