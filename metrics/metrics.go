// Package metrics defines the Prometheus collectors used by the adapters and the reference backend.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Client-side adapter metrics
var (
	// ClientRequests counts adapter calls by variant (live/mock), operation and outcome.
	ClientRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskclient_requests_total",
			Help: "Total adapter operations by variant, operation and outcome.",
		},
		[]string{"variant", "operation", "outcome"},
	)
)

// Reference backend metrics
var (
	EndpointCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskclient_backend_endpoint_calls_total",
			Help: "Total number of calls per backend endpoint.",
		},
		[]string{"endpoint"},
	)

	EndpointErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskclient_backend_errors_total",
			Help: "Total number of errors returned per backend endpoint.",
		},
		[]string{"endpoint"},
	)

	// RateLimited counts requests rejected by the backend's limiter.
	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taskclient_backend_rate_limited_total",
			Help: "Total number of requests rejected because the backend was at capacity.",
		},
	)
)

// ObserveClient records the outcome of one adapter operation.
func ObserveClient(variant, operation string, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	ClientRequests.WithLabelValues(variant, operation, outcome).Inc()
}
