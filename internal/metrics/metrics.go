package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics, recorded by the metrics middleware for every request
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Distribution engine metrics
var (
	LeadsDistributedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_distributed_total",
			Help: "Leads assigned to brokers, by method",
		},
		[]string{"method"},
	)

	RosterExhaustedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roster_exhausted_total",
			Help: "Distribution attempts where every eligible broker was at quota",
		},
	)

	DistributionConflictRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "distribution_conflict_retries_total",
			Help: "Distribution transactions retried after serialization or deadlock errors",
		},
	)
)

// WhatsApp ingest metrics
var (
	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Inbound webhook events, by provider and result",
		},
		[]string{"provider", "result"},
	)
)
