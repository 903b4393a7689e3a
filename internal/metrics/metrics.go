package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "pitchflow"

var (
	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Total number of submit calls, labeled by outcome.",
		},
		[]string{"outcome"},
	)

	WebhookRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_requests_total",
			Help:      "Total number of deck webhook requests, labeled by outcome.",
		},
		[]string{"outcome"},
	)

	WebhookLatencySeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "webhook_latency_seconds",
			Help:      "Deck webhook round trip latency (seconds).",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"outcome"},
	)

	CountdownsCompletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "countdowns_completed_total",
			Help:      "Total number of countdowns that reached zero, labeled by whether a result link was known.",
		},
		[]string{"result"},
	)

	StaleResponsesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_responses_total",
			Help:      "Webhook responses discarded because their session was no longer current.",
		},
	)

	RateLimitHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_hits_total",
			Help:      "Total number of requests rejected by the rate limiter.",
		},
		[]string{"scope", "operation"},
	)
)

func init() {
	prometheus.MustRegister(
		SubmissionsTotal,
		WebhookRequestsTotal,
		WebhookLatencySeconds,
		CountdownsCompletedTotal,
		StaleResponsesTotal,
		RateLimitHitsTotal,
	)
}
