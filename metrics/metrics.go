// Package metrics concentra os coletores Prometheus do gateway.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Verdicts conta decisões do gateway por resultado e papel.
	Verdicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "franchise_api_verdicts_total",
			Help: "Total number of gateway verdicts by outcome and role",
		},
		[]string{"outcome", "role"},
	)

	// DegradedVerdicts conta chamadas liberadas em fail-open.
	DegradedVerdicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "franchise_api_fail_open_total",
			Help: "Total number of requests allowed because the counter store was unavailable",
		},
	)

	CounterStoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "franchise_api_counter_store_errors_total",
			Help: "Total number of counter store errors by operation",
		},
		[]string{"op"},
	)

	// CounterBreakerState: 0=closed, 1=half-open, 2=open
	CounterBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "franchise_api_counter_breaker_state",
			Help: "Circuit breaker state of the counter store (0=closed, 1=half-open, 2=open)",
		},
	)

	ThrottledRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_throttled_requests_total",
			Help: "Total number of requests rejected by the per-IP throttle",
		},
		[]string{"path"},
	)

	ThrottleClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_throttle_clients",
			Help: "Number of clients with an active login throttle bucket",
		},
	)

	LoginEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_events_total",
			Help: "Total number of login events by result",
		},
		[]string{"result"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_requests",
			Help: "Number of HTTP requests currently in flight",
		},
	)
)

// RecordVerdict registra uma decisão do gateway.
func RecordVerdict(outcome, role string, degraded bool) {
	Verdicts.WithLabelValues(outcome, role).Inc()
	if degraded {
		DegradedVerdicts.Inc()
	}
}

// RecordAPIRequest registra contagem e latência de um request HTTP.
func RecordAPIRequest(method, route string, status int, d time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
