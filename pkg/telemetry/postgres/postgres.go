// Package postgres provides a PostgreSQL telemetry sink for durable call
// accounting. It uses pgx/v5 for connection pooling.
//
// The sink participates in the fire-and-forget emission contract: write
// failures are returned to the async emitter, which logs and discards them.
// A database outage never affects the dispatch path.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tbuchner/relais/pkg/telemetry"
)

// schema creates the telemetry events table. Kept idempotent so the sink
// can be pointed at a fresh database without a separate migration step.
const schema = `
CREATE TABLE IF NOT EXISTS call_events (
	id          BIGSERIAL PRIMARY KEY,
	call_id     TEXT        NOT NULL,
	provider    TEXT        NOT NULL,
	model       TEXT        NOT NULL,
	attempt     INT         NOT NULL,
	duration_ms BIGINT      NOT NULL,
	outcome     TEXT        NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS call_events_call_id_idx ON call_events (call_id);
CREATE INDEX IF NOT EXISTS call_events_recorded_at_idx ON call_events (recorded_at);
`

// Sink writes telemetry events to PostgreSQL.
type Sink struct {
	pool *pgxpool.Pool
}

// Ensure Sink implements telemetry.Sink at compile time.
var _ telemetry.Sink = (*Sink)(nil)

// New creates a PostgreSQL sink with the given configuration. The schema is
// applied on startup when cfg.MigrateOnStart is set.
func New(ctx context.Context, cfg Config) (*Sink, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Sink{pool: pool}

	if cfg.MigrateOnStart {
		if _, err := pool.Exec(ctx, schema); err != nil {
			pool.Close()
			return nil, fmt.Errorf("applying schema: %w", err)
		}
	}

	return s, nil
}

// Write inserts one event.
func (s *Sink) Write(ctx context.Context, ev telemetry.Event) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO call_events (call_id, provider, model, attempt, duration_ms, outcome, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		ev.CallID, ev.Provider, ev.Model, ev.Attempt, ev.Duration.Milliseconds(), ev.Outcome, ev.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("inserting call event: %w", err)
	}
	return nil
}

// CountByOutcome returns how many attempts were recorded for a call, keyed
// by outcome. Used for operational queries and tests.
func (s *Sink) CountByOutcome(ctx context.Context, callID string) (map[string]int, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT outcome, COUNT(*) FROM call_events WHERE call_id = $1 GROUP BY outcome",
		callID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying call events: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var outcome string
		var count int
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, fmt.Errorf("scanning call event row: %w", err)
		}
		out[outcome] = count
	}
	return out, rows.Err()
}

// Close releases the connection pool.
func (s *Sink) Close() error {
	s.pool.Close()
	return nil
}
