package integration

import (
	"net/http"
	"testing"

	"github.com/tbuchner/relais/pkg/transport"
)

func TestListProviders(t *testing.T) {
	resp := getURL(t, testEnv.BaseURL()+"/v1/providers")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var pl transport.ProviderList
	decodeJSON(t, resp, &pl)
	if len(pl.Providers) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(pl.Providers))
	}
	if pl.Providers[0].ID != "mock" || pl.Providers[1].ID != "proxy" {
		t.Errorf("unexpected provider order: %+v", pl.Providers)
	}
}

func TestListModels(t *testing.T) {
	resp := getURL(t, testEnv.BaseURL()+"/v1/providers/mock/models")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var ml transport.ModelList
	decodeJSON(t, resp, &ml)
	if ml.Provider != "mock" {
		t.Errorf("unexpected provider %q", ml.Provider)
	}
	if len(ml.Models) != 1 || ml.Models[0] != "mock-model" {
		t.Errorf("unexpected models: %v", ml.Models)
	}
}

func TestListModelsUnknownProvider(t *testing.T) {
	resp := getURL(t, testEnv.BaseURL()+"/v1/providers/ghost/models")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestHealthEndpoints(t *testing.T) {
	for _, path := range []string{"/healthz", "/readyz"} {
		resp := getURL(t, testEnv.BaseURL()+path)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, resp.StatusCode)
		}
	}
}
