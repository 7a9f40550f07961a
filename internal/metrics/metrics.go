// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values of CRUD operations.
const (
	OutcomeSuccess      = "success"
	OutcomeInvalid      = "invalid"
	OutcomeUnauthorized = "unauthorized"
	OutcomeNotFound     = "not_found"
	OutcomeConflict     = "conflict"
	OutcomeError        = "error"
)

var (
	CRUDOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crud_operations_total",
			Help: "Generated resource operations by outcome.",
		},
		[]string{"resource", "operation", "outcome"},
	)

	CRUDDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crud_operation_duration_seconds",
			Help:    "Latency of generated resource operations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"resource", "operation"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route, method and status.",
		},
		[]string{"path", "method", "status"},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limited_requests_total",
			Help: "Requests rejected by the rate limiter.",
		},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "change_events_published_total",
			Help: "Resource change events handed to the broker, by result.",
		},
		[]string{"result"},
	)
)

// ObserveOperation records one finished CRUD operation.
func ObserveOperation(resource, operation, outcome string, elapsed time.Duration) {
	CRUDOperations.WithLabelValues(resource, operation, outcome).Inc()
	CRUDDuration.WithLabelValues(resource, operation).Observe(elapsed.Seconds())
}
