// Package metrics registers the service's Prometheus collectors and offers
// small helpers for recording them.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "musicapp_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "musicapp_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "musicapp_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	// Playlist sharing
	ShareCodeCollisions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "musicapp_share_code_collisions_total",
			Help: "Generated share codes that were already taken",
		},
	)

	ShareCodeExhausted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "musicapp_share_code_exhausted_total",
			Help: "Share requests that ran out of generation attempts",
		},
	)

	// Recommender
	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "musicapp_recommendations_served_total",
			Help: "Recommendation requests by seed source",
		},
		[]string{"seed_source"}, // "explicit", "favorites", "fallback"
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "musicapp_recommendation_duration_seconds",
			Help:    "Time spent scoring the catalog",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		},
	)

	// Events and the external recommendation service
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "musicapp_events_published_total",
			Help: "Domain events published, by topic and outcome",
		},
		[]string{"topic", "outcome"},
	)

	RecServiceRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "musicapp_recsvc_requests_total",
			Help: "Calls to the recommendation service, by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "musicapp_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// Media
	MediaUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "musicapp_media_uploads_total",
			Help: "Object storage uploads by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
)

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordAPIRequest records one completed request.
func RecordAPIRequest(method, route, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

func RecordShareCollision() {
	ShareCodeCollisions.Inc()
}

func RecordShareExhausted() {
	ShareCodeExhausted.Inc()
}

// RecordRecommendation records a scored request.
func RecordRecommendation(seedSource string, duration time.Duration) {
	RecommendationsServed.WithLabelValues(seedSource).Inc()
	RecommendationDuration.Observe(duration.Seconds())
}

func RecordEventPublish(topic string, err error) {
	EventsPublished.WithLabelValues(topic, outcome(err)).Inc()
}

func RecordRecServiceCall(operation string, err error) {
	RecServiceRequests.WithLabelValues(operation, outcome(err)).Inc()
}

// SetCircuitBreakerState publishes a breaker's state as a gauge value.
func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

func RecordMediaUpload(kind string, err error) {
	MediaUploads.WithLabelValues(kind, outcome(err)).Inc()
}
