// Package config provides unified configuration for the relais dispatch
// layer.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (RELAIS_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import (
	"time"

	"github.com/tbuchner/relais/pkg/retry"
)

// Config holds all configuration for the relais server.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Retry         RetryConfig         `yaml:"retry"`
	Providers     []ProviderConfig    `yaml:"providers"`
	Telemetry     TelemetryConfig     `yaml:"telemetry"`
	Auth          AuthConfig          `yaml:"auth"`
	Observability ObservabilityConfig `yaml:"observability"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `yaml:"port"`          // default: 8080
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"` // default: 120s
}

// RetryConfig holds retry and timeout governance settings. It applies to
// all providers unless a provider entry carries its own retry block.
type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts"`    // default: 3
	BaseDelay      time.Duration `yaml:"base_delay"`      // default: 500ms
	Multiplier     float64       `yaml:"multiplier"`      // default: 2.0
	MaxDelay       time.Duration `yaml:"max_delay"`       // default: 30s
	Jitter         *bool         `yaml:"jitter"`          // default: true
	AttemptTimeout time.Duration `yaml:"attempt_timeout"` // default: 120s
	OverallTimeout time.Duration `yaml:"overall_timeout"` // default: 0 (unbounded)
}

// ToPolicy converts the config block into a retry policy, filling unset
// fields from the defaults.
func (r RetryConfig) ToPolicy() retry.Policy {
	pol := retry.DefaultPolicy()
	if r.MaxAttempts > 0 {
		pol.MaxAttempts = r.MaxAttempts
	}
	if r.BaseDelay > 0 {
		pol.BaseDelay = r.BaseDelay
	}
	if r.Multiplier > 0 {
		pol.Multiplier = r.Multiplier
	}
	if r.MaxDelay > 0 {
		pol.MaxDelay = r.MaxDelay
	}
	if r.Jitter != nil {
		pol.Jitter = *r.Jitter
	}
	if r.AttemptTimeout > 0 {
		pol.AttemptTimeout = r.AttemptTimeout
	}
	if r.OverallTimeout > 0 {
		pol.OverallTimeout = r.OverallTimeout
	}
	return pol
}

// ProviderConfig describes a single upstream provider entry.
type ProviderConfig struct {
	Name         string            `yaml:"name"`          // required, unique
	Type         string            `yaml:"type"`          // "openai" or "litellm", default: "openai"
	DisplayName  string            `yaml:"display_name"`  // optional
	BaseURL      string            `yaml:"base_url"`      // required
	APIKey       string            `yaml:"api_key"`       // optional
	APIKeyFile   string            `yaml:"api_key_file"`  // _file variant for api_key
	Timeout      time.Duration     `yaml:"timeout"`       // per-request HTTP timeout
	Models       []string          `yaml:"models"`        // advertised models
	ModelMapping map[string]string `yaml:"model_mapping"` // litellm alias mapping
	Retry        *RetryConfig      `yaml:"retry"`         // overrides the global retry block
}

// TelemetryConfig holds call telemetry settings.
type TelemetryConfig struct {
	Buffer   int                     `yaml:"buffer"` // event channel size, default: 256
	Postgres TelemetryPostgresConfig `yaml:"postgres"`
}

// TelemetryPostgresConfig holds the optional PostgreSQL telemetry sink.
type TelemetryPostgresConfig struct {
	Enabled        bool   `yaml:"enabled"`
	DSN            string `yaml:"dsn"`
	DSNFile        string `yaml:"dsn_file"` // _file variant for dsn
	MaxConns       int32  `yaml:"max_conns"`
	MigrateOnStart bool   `yaml:"migrate_on_start"`
}

// AuthConfig holds inbound authentication settings.
type AuthConfig struct {
	Type    string         `yaml:"type"`     // "none", "apikey", "jwt", default: "none"
	APIKeys []APIKeyConfig `yaml:"api_keys"` // API key entries for type=apikey
	JWT     JWTConfig      `yaml:"jwt"`      // settings for type=jwt
}

// APIKeyConfig describes a single inbound API key entry.
type APIKeyConfig struct {
	Key     string `yaml:"key"`
	KeyFile string `yaml:"key_file"` // _file variant for key
	Subject string `yaml:"subject"`
}

// JWTConfig holds HS256 token verification settings.
type JWTConfig struct {
	Secret     string `yaml:"secret"`
	SecretFile string `yaml:"secret_file"` // _file variant for secret
	Issuer     string `yaml:"issuer"`
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error", default: "info"
	Format string `yaml:"format"` // "text" or "json", default: "text"
	Debug  string `yaml:"debug"`  // debug categories, e.g. "retry,config" or "all"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
		},
		Retry: RetryConfig{
			MaxAttempts:    3,
			BaseDelay:      500 * time.Millisecond,
			Multiplier:     2.0,
			MaxDelay:       30 * time.Second,
			AttemptTimeout: 120 * time.Second,
		},
		Telemetry: TelemetryConfig{
			Buffer: 256,
		},
		Auth: AuthConfig{
			Type: "none",
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// PolicyFor returns the effective retry policy for the named provider:
// the provider's own retry block when present, the global block otherwise.
func (c *Config) PolicyFor(providerID string) retry.Policy {
	for i := range c.Providers {
		if c.Providers[i].Name == providerID && c.Providers[i].Retry != nil {
			return c.Providers[i].Retry.ToPolicy()
		}
	}
	return c.Retry.ToPolicy()
}
