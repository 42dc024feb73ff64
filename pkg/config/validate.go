package config

import (
	"errors"
	"fmt"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}

	if len(c.Providers) == 0 {
		errs = append(errs, fmt.Errorf("at least one providers entry is required"))
	}

	seen := make(map[string]bool, len(c.Providers))
	for i, p := range c.Providers {
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("providers[%d].name is required", i))
		} else if seen[p.Name] {
			errs = append(errs, fmt.Errorf("providers[%d].name %q is not unique", i, p.Name))
		}
		seen[p.Name] = true

		if p.BaseURL == "" {
			errs = append(errs, fmt.Errorf("providers[%d].base_url is required", i))
		}

		switch p.Type {
		case "", "openai", "litellm":
			// valid
		default:
			errs = append(errs, fmt.Errorf("providers[%d].type must be \"openai\" or \"litellm\", got %q", i, p.Type))
		}

		if p.Retry != nil {
			if err := validateRetry(fmt.Sprintf("providers[%d].retry", i), *p.Retry); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if err := validateRetry("retry", c.Retry); err != nil {
		errs = append(errs, err)
	}

	switch c.Auth.Type {
	case "none", "apikey", "jwt":
		// valid
	default:
		errs = append(errs, fmt.Errorf("auth.type must be \"none\", \"apikey\", or \"jwt\", got %q", c.Auth.Type))
	}

	if c.Auth.Type == "apikey" && len(c.Auth.APIKeys) == 0 {
		errs = append(errs, fmt.Errorf("auth.api_keys is required when auth.type is \"apikey\""))
	}
	if c.Auth.Type == "jwt" && c.Auth.JWT.Secret == "" && c.Auth.JWT.SecretFile == "" {
		errs = append(errs, fmt.Errorf("auth.jwt.secret or auth.jwt.secret_file is required when auth.type is \"jwt\""))
	}

	if c.Telemetry.Postgres.Enabled && c.Telemetry.Postgres.DSN == "" && c.Telemetry.Postgres.DSNFile == "" {
		errs = append(errs, fmt.Errorf("telemetry.postgres.dsn or telemetry.postgres.dsn_file is required when the postgres sink is enabled"))
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		errs = append(errs, fmt.Errorf("logging.level must be \"debug\", \"info\", \"warn\", or \"error\", got %q", c.Logging.Level))
	}

	switch c.Logging.Format {
	case "", "text", "json":
		// valid
	default:
		errs = append(errs, fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}

func validateRetry(path string, r RetryConfig) error {
	var errs []error
	if r.MaxAttempts < 0 {
		errs = append(errs, fmt.Errorf("%s.max_attempts must be >= 0, got %d", path, r.MaxAttempts))
	}
	if r.Multiplier < 0 {
		errs = append(errs, fmt.Errorf("%s.multiplier must be >= 0, got %g", path, r.Multiplier))
	}
	if r.BaseDelay < 0 {
		errs = append(errs, fmt.Errorf("%s.base_delay must be >= 0, got %s", path, r.BaseDelay))
	}
	if r.MaxDelay > 0 && r.BaseDelay > r.MaxDelay {
		errs = append(errs, fmt.Errorf("%s.base_delay must not exceed %s.max_delay", path, path))
	}
	return errors.Join(errs...)
}
