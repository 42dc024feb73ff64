// Package transport exposes the relais dispatch layer over HTTP.
//
// The transport layer bridges external clients and the internal dispatch
// facade. It deserializes incoming dispatch requests, hands them to the
// dispatcher, and serializes responses back as JSON. Failures surface in a
// uniform error envelope derived from the normalized error model, so
// clients see one error shape regardless of which upstream provider
// misbehaved.
//
// # Routes
//
//   - POST /v1/dispatch: execute a completion call against a provider
//   - GET  /v1/providers: list registered providers and capabilities
//   - GET  /v1/providers/{id}/models: live model listing for one provider
//   - GET  /healthz, /readyz: liveness and readiness probes
//
// # Middleware
//
// HTTP middleware provides panic recovery, request ID assignment
// (X-Request-ID), and structured logging via log/slog. Inbound
// authentication and Prometheus instrumentation are mounted by the server
// wiring, not here.
package transport
