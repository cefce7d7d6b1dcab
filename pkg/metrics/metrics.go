package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	AdmissionDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admission_decisions_total",
			Help: "Total number of per-message admission decisions (count)",
		},
		[]string{"mode", "outcome"},
	)

	ConsumerMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "consumer_messages_total",
			Help: "Total number of messages received by the consumer loop (count)",
		},
		[]string{"outcome"},
	)

	ActiveRoutes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_routes",
			Help: "Number of routing keys currently backed by a live sandbox (count)",
		},
	)

	RoutePollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "route_polls_total",
			Help: "Total number of route server poll cycles (count)",
		},
		[]string{"status"},
	)

	RoutePollDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "route_poll_duration_ms",
			Help:    "Route server poll duration in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
	)

	PublishedMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "published_messages_total",
			Help: "Total number of messages published (count)",
		},
		[]string{"targeted"},
	)

	EventStoreWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_store_writes_total",
			Help: "Total number of event side-store writes (count)",
		},
		[]string{"status"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Total number of requests seen by the rate limiter (count)",
		},
		[]string{"status"},
	)
)

const (
	AdmissionOutcomeAccepted = "accepted"
	AdmissionOutcomeRejected = "rejected"
)

const (
	ConsumeOutcomeProcessed    = "processed"
	ConsumeOutcomeSkipped      = "skipped"
	ConsumeOutcomeHandlerError = "handler_error"
)

const (
	PollStatusSuccess = "success"
	PollStatusError   = "error"
)

func RegisterConsumerMetrics() {
	prometheus.MustRegister(
		AdmissionDecisionsTotal,
		ConsumerMessagesTotal,
		ActiveRoutes,
		RoutePollsTotal,
		RoutePollDuration,
	)
}

func RegisterPublisherMetrics() {
	prometheus.MustRegister(
		PublishedMessagesTotal,
		EventStoreWritesTotal,
		RateLimitRequestsTotal,
	)
}

func SetActiveRoutes(n int) {
	ActiveRoutes.Set(float64(n))
}
