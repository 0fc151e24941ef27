package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	DeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_deliveries_total",
			Help: "Total number of direct message delivery attempts by outcome (count)",
		},
		[]string{"status"},
	)

	DeliveryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_delivery_duration_ms",
			Help:    "Duration of a single direct message delivery in milliseconds",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"status"},
	)

	ResolvedRecipients = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_resolved_recipients",
			Help:    "Number of recipients a target resolved to (count)",
			Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000},
		},
		[]string{"target"},
	)

	BroadcastsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_broadcasts_total",
			Help: "Total number of background broadcasts started (count)",
		},
		[]string{"target"},
	)

	BroadcastsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_broadcasts_in_flight",
			Help: "Number of broadcasts currently delivering (count)",
		},
	)

	ReportsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_reports_published_total",
			Help: "Total number of broadcast reports handed to a report sink (count)",
		},
		[]string{"sink", "status"},
	)

	CommandInteractionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_command_interactions_total",
			Help: "Total number of slash command and modal interactions by outcome (count)",
		},
		[]string{"outcome"},
	)

	CooldownEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_cooldown_entries",
			Help: "Number of recipients currently tracked by the cooldown store (count)",
		},
	)

	DirectoryRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_directory_requests_total",
			Help: "Total number of guild directory requests (count)",
		},
		[]string{"operation", "status"},
	)

	DirectoryRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_directory_request_duration_ms",
			Help:    "Duration of guild directory requests in milliseconds",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"operation"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failures through circuit breaker (count)",
		},
		[]string{"name"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Total number of requests checked against rate limit (count)",
		},
		[]string{"status"},
	)

	FallbackUsageTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fallback_usage_total",
			Help: "Total number of times fallback strategies were used (count)",
		},
		[]string{"service", "strategy"},
	)
)

func RegisterRelayMetrics() {
	prometheus.MustRegister(DeliveriesTotal)
	prometheus.MustRegister(DeliveryDuration)
	prometheus.MustRegister(ResolvedRecipients)
	prometheus.MustRegister(BroadcastsTotal)
	prometheus.MustRegister(BroadcastsInFlight)
	prometheus.MustRegister(ReportsPublishedTotal)
	prometheus.MustRegister(CommandInteractionsTotal)
	prometheus.MustRegister(CooldownEntries)
	prometheus.MustRegister(DirectoryRequestsTotal)
	prometheus.MustRegister(DirectoryRequestDuration)
	prometheus.MustRegister(RateLimitRequestsTotal)
	prometheus.MustRegister(FallbackUsageTotal)
}

func RegisterCircuitBreakerMetrics() {
	prometheus.MustRegister(CircuitBreakerState)
	prometheus.MustRegister(CircuitBreakerRequests)
	prometheus.MustRegister(CircuitBreakerFailures)
}

func ObserveDelivery(duration time.Duration, status string) {
	DeliveriesTotal.WithLabelValues(status).Inc()
	DeliveryDuration.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

func ObserveResolvedRecipients(target string, count int) {
	ResolvedRecipients.WithLabelValues(target).Observe(float64(count))
}

func ObserveDirectoryRequest(operation, status string, duration time.Duration) {
	DirectoryRequestsTotal.WithLabelValues(operation, status).Inc()
	DirectoryRequestDuration.WithLabelValues(operation).Observe(float64(duration.Milliseconds()))
}

func IncCommandInteraction(outcome string) {
	CommandInteractionsTotal.WithLabelValues(outcome).Inc()
}

func IncReportPublished(sink, status string) {
	ReportsPublishedTotal.WithLabelValues(sink, status).Inc()
}

func SetCooldownEntries(size int) {
	CooldownEntries.Set(float64(size))
}
