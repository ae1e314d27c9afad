// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatbot_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 90},
		},
		[]string{"method", "route", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// GatewayDuration tracks RAG gateway round trips by outcome.
	GatewayDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatbot_gateway_duration_seconds",
			Help:    "RAG gateway call duration",
			Buckets: []float64{0.5, 1, 2, 5, 7, 10, 15, 20, 30, 45, 60, 90},
		},
		[]string{"outcome"},
	)

	// TurnsTotal tracks persisted turns.
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_turns_total",
			Help: "Total persisted turns",
		},
		[]string{"role", "category"},
	)

	// SessionsCreated tracks newly created sessions.
	SessionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatbot_sessions_created_total",
			Help: "Total sessions created",
		},
	)

	// FeedbackTotal tracks recorded feedback by helpfulness.
	FeedbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_feedback_total",
			Help: "Total feedback recorded",
		},
		[]string{"helpful"},
	)

	// PersonalizationTotal tracks personalization lookups by outcome.
	PersonalizationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_personalization_total",
			Help: "Personalization lookups by outcome",
		},
		[]string{"outcome"},
	)

	// EventPublishFailures tracks turn events that could not be published.
	EventPublishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatbot_event_publish_failures_total",
			Help: "Turn events that failed to publish",
		},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, route, status string, duration float64) {
	RequestDuration.WithLabelValues(method, route, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, route, status).Inc()
}

// RecordGatewayCall records one gateway round trip.
func RecordGatewayCall(outcome string, duration float64) {
	GatewayDuration.WithLabelValues(outcome).Observe(duration)
}

// RecordTurn records a persisted turn.
func RecordTurn(role, category string) {
	TurnsTotal.WithLabelValues(role, category).Inc()
}
