// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the relais dispatch core.
package observability

import "github.com/prometheus/client_golang/prometheus"

// LLMBuckets defines histogram buckets suited for LLM inference latencies,
// ranging from 100ms to 120s.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// RequestsTotal counts all HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relais_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relais_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: LLMBuckets,
		},
		[]string{"method"},
	)

	// DispatchAttemptsTotal counts individual provider call attempts by outcome.
	DispatchAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relais_dispatch_attempts_total",
			Help: "Provider call attempts",
		},
		[]string{"provider", "model", "outcome"},
	)

	// DispatchLatency records per-attempt provider latency in seconds.
	DispatchLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relais_dispatch_latency_seconds",
			Help:    "Provider call attempt latency",
			Buckets: LLMBuckets,
		},
		[]string{"provider", "model"},
	)

	// DispatchCallsTotal counts dispatched calls by terminal outcome.
	DispatchCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relais_dispatch_calls_total",
			Help: "Dispatched calls by terminal outcome",
		},
		[]string{"provider", "model", "outcome"},
	)

	// RetryWaits records backoff wait durations between attempts.
	RetryWaits = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relais_retry_wait_seconds",
			Help:    "Backoff wait before a retry attempt",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"provider"},
	)

	// TelemetryDroppedTotal counts telemetry events dropped on a full buffer.
	TelemetryDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relais_telemetry_dropped_total",
			Help: "Telemetry events dropped",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		DispatchAttemptsTotal,
		DispatchLatency,
		DispatchCallsTotal,
		RetryWaits,
		TelemetryDroppedTotal,
	)
}
