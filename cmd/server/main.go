// Command server runs the relais provider dispatch gateway.
//
// Configuration is loaded from a YAML file (discovered via -config,
// RELAIS_CONFIG, ./config.yaml, or /etc/relais/config.yaml) with
// environment variable overrides:
//
//	RELAIS_PORT                - Listen port
//	RELAIS_AUTH_TYPE           - Inbound auth: "none", "apikey", "jwt"
//	RELAIS_LOG_LEVEL           - ERROR, WARN, INFO, DEBUG, TRACE
//	RELAIS_LOG_FORMAT          - "text" or "json"
//	RELAIS_RETRY_MAX_ATTEMPTS  - Global retry attempt cap
//	RELAIS_TELEMETRY_DSN       - Enable the PostgreSQL telemetry sink
//	RELAIS_DEBUG               - Debug categories (comma-separated)
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tbuchner/relais/pkg/auth"
	"github.com/tbuchner/relais/pkg/auth/apikey"
	"github.com/tbuchner/relais/pkg/auth/hmacjwt"
	"github.com/tbuchner/relais/pkg/auth/noop"
	"github.com/tbuchner/relais/pkg/config"
	"github.com/tbuchner/relais/pkg/debug"
	"github.com/tbuchner/relais/pkg/dispatch"
	"github.com/tbuchner/relais/pkg/observability"
	"github.com/tbuchner/relais/pkg/provider/factory"
	"github.com/tbuchner/relais/pkg/telemetry"
	pgsink "github.com/tbuchner/relais/pkg/telemetry/postgres"
	"github.com/tbuchner/relais/pkg/transport"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	store, err := config.NewStore(*configPath)
	if err != nil {
		return err
	}
	cfg := store.Snapshot()

	debug.Init(cfg.Logging.Debug, cfg.Logging.Level, cfg.Logging.Format)

	// Telemetry sinks: always log and metrics, postgres when configured.
	sinks := []telemetry.Sink{
		&telemetry.LogSink{},
		telemetry.MetricsSink{},
	}
	if cfg.Telemetry.Postgres.Enabled {
		pg, err := pgsink.New(context.Background(), pgsink.Config{
			DSN:            cfg.Telemetry.Postgres.DSN,
			MaxConns:       cfg.Telemetry.Postgres.MaxConns,
			MigrateOnStart: cfg.Telemetry.Postgres.MigrateOnStart,
		})
		if err != nil {
			return fmt.Errorf("creating postgres telemetry sink: %w", err)
		}
		defer pg.Close()
		sinks = append(sinks, pg)
		slog.Info("postgres telemetry sink enabled")
	}

	emitter := telemetry.NewAsyncEmitter(cfg.Telemetry.Buffer, sinks...)
	defer emitter.Close()

	registry, err := factory.BuildRegistry(cfg.Providers)
	if err != nil {
		return fmt.Errorf("building provider registry: %w", err)
	}
	defer registry.Close()
	slog.Info("providers registered", "count", registry.Len())

	dispatcher := dispatch.New(registry, emitter, store.PolicyFor)

	chain, err := buildAuthChain(cfg.Auth)
	if err != nil {
		return err
	}

	middleware := []transport.Middleware{
		observability.MetricsMiddleware,
		auth.Middleware(chain, auth.DefaultBypassEndpoints),
	}

	opts := []transport.ServerOption{
		transport.WithAddr(fmt.Sprintf(":%d", cfg.Server.Port)),
		transport.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
	}
	if cfg.Observability.Metrics.Enabled {
		opts = append(opts, transport.WithHandler("GET "+cfg.Observability.Metrics.Path, promhttp.Handler()))
	}

	srv := transport.NewServer(dispatcher, middleware, opts...)

	// Hot-reload retry policies on config file changes. Provider and
	// server changes need a restart.
	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()
	go func() {
		if err := store.Watch(watchCtx); err != nil {
			slog.Error("config watcher stopped", "error", err)
		}
	}()

	return srv.ListenAndServe()
}

func buildAuthChain(cfg config.AuthConfig) (*auth.Chain, error) {
	switch cfg.Type {
	case "none":
		return &auth.Chain{
			Authenticators:  []auth.Authenticator{&noop.Authenticator{}},
			DefaultDecision: auth.Yes,
		}, nil
	case "apikey":
		entries := make([]apikey.RawKeyEntry, 0, len(cfg.APIKeys))
		for _, k := range cfg.APIKeys {
			subject := k.Subject
			if subject == "" {
				subject = "apikey-client"
			}
			entries = append(entries, apikey.RawKeyEntry{
				Key:      k.Key,
				Identity: auth.Identity{Subject: subject},
			})
		}
		return &auth.Chain{
			Authenticators:  []auth.Authenticator{apikey.New(entries)},
			DefaultDecision: auth.No,
		}, nil
	case "jwt":
		return &auth.Chain{
			Authenticators: []auth.Authenticator{hmacjwt.New(hmacjwt.Config{
				Secret: cfg.JWT.Secret,
				Issuer: cfg.JWT.Issuer,
			})},
			DefaultDecision: auth.No,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported auth type %q", cfg.Type)
	}
}
