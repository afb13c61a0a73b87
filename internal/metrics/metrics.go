package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Tracks ticket submissions by outcome.
	TicketsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listero_tickets_total",
			Help: "Total number of ticket submissions (by result).",
		},
		[]string{"result"}, // accepted | rejected | error
	)

	// Tracks diagnostics surfaced to operators.
	DiagnosticsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listero_diagnostics_total",
			Help: "Total diagnostics reported during ticket review.",
		},
		[]string{"kind"}, // parse_error | limit_violation | duplicate_conflict
	)

	// Measures end-to-end submit duration.
	SubmitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "listero_submit_duration_seconds",
			Help:    "Duration of ticket preview/submit handling in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms → ~4s
		},
		[]string{"operation"}, // preview | submit
	)

	// Tracks NATS messages published by subject and result.
	NATSMessageCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nats_messages_total",
			Help: "Total number of NATS messages published.",
		},
		[]string{"subject", "result"}, // result = "ok" | "error"
	)

	NATSMessageLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nats_message_latency_seconds",
			Help:    "Time taken to publish NATS messages",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"subject"},
	)

	// Tracks cache hits and misses for secrets / credentials.
	SecretsCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "secrets_cache_access_total",
			Help: "Number of cache hits/misses in secret cache.",
		},
		[]string{"result"}, // hit | miss
	)

	// Tracks total errors (aggregated).
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listero_errors_total",
			Help: "Count of service-level errors by component.",
		},
		[]string{"component", "reason"},
	)

	// Gauges the last successful usage rollup refresh (seconds since epoch).
	LastUsageRefresh = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "listero_last_usage_refresh_timestamp",
			Help: "Timestamp (unix seconds) of the last successful usage rollup refresh.",
		},
	)
)

// ObserveDuration records the time since start on the given histogram.
func ObserveDuration(h *prometheus.HistogramVec, start time.Time, labels ...string) {
	h.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
}

func IncTicket(result string) {
	TicketsTotal.WithLabelValues(result).Inc()
}

func AddDiagnostics(kind string, n int) {
	if n > 0 {
		DiagnosticsTotal.WithLabelValues(kind).Add(float64(n))
	}
}

func IncNATSMessage(subject, result string) {
	NATSMessageCount.WithLabelValues(subject, result).Inc()
}

func IncCacheHit(result string) {
	SecretsCacheHits.WithLabelValues(result).Inc()
}

func IncError(component, reason string) {
	ErrorsTotal.WithLabelValues(component, reason).Inc()
}

func SetLastUsageRefresh(t time.Time) {
	LastUsageRefresh.Set(float64(t.Unix()))
}
