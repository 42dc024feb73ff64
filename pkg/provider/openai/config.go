package openai

import (
	"fmt"
	"time"
)

// Config holds configuration for the OpenAI-compatible adapter.
type Config struct {
	// ID is the provider identifier used for dispatch routing (e.g., "openai").
	ID string

	// DisplayName is the human-readable name shown in discovery.
	DisplayName string

	// BaseURL is the backend URL (e.g., "https://api.openai.com").
	BaseURL string

	// APIKey for backend authentication (optional for local backends).
	APIKey string

	// Timeout for individual HTTP requests. Defaults to 120s.
	Timeout time.Duration

	// Models lists the model identifiers this provider serves, used for
	// discovery. Live availability can still be queried via ListModels.
	Models []string
}

func (c Config) validate() error {
	if c.ID == "" {
		return fmt.Errorf("openai: ID is required")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("openai: BaseURL is required")
	}
	return nil
}
