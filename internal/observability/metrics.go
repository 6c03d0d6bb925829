// Package observability holds Prometheus collectors and OpenTelemetry setup.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialvim_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "socialvim_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// InteractionToggles counts like/repost toggles by type and resulting state.
	InteractionToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialvim_interaction_toggles_total",
		Help: "Total number of like/repost toggles",
	}, []string{"type", "state"})

	// UsersRegistered counts handles registered on first sight.
	UsersRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "socialvim_users_registered_total",
		Help: "Total number of users auto-registered from an unseen handle",
	})

	// MessagesSent counts direct messages stored.
	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "socialvim_messages_sent_total",
		Help: "Total number of direct messages sent",
	})

	// RateLimitRejections counts requests rejected by the Redis rate limiter.
	RateLimitRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialvim_rate_limit_rejections_total",
		Help: "Total number of requests rejected by the rate limiter",
	}, []string{"resource"})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		ObserveQuery(operation, table, start)
	}
}

// RecordToggle records the outcome of an interaction toggle.
func RecordToggle(interactionType string, active bool) {
	state := "removed"
	if active {
		state = "added"
	}
	InteractionToggles.WithLabelValues(interactionType, state).Inc()
}
