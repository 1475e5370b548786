package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BackendRequests counts backend API calls by operation and HTTP status ("error" on transport failure).
	BackendRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Subsystem: "backend",
		Name:      "requests_total",
		Help:      "Backend API requests by operation and status.",
	}, []string{"operation", "status"})

	// BackendDuration tracks backend API latency.
	BackendDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "portal",
		Subsystem: "backend",
		Name:      "request_duration_seconds",
		Help:      "Backend API request duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	// CheckoutOutcomes counts checkout submissions by final form state.
	CheckoutOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Subsystem: "checkout",
		Name:      "outcomes_total",
		Help:      "Checkout submissions by outcome and plan.",
	}, []string{"outcome", "plan"})

	// QuotesTotal counts calculator quotes by recommended tier.
	QuotesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Subsystem: "pricing",
		Name:      "quotes_total",
		Help:      "Price calculator quotes by recommended tier.",
	}, []string{"tier"})

	// DashboardReads counts dashboard reads by reader and resulting state.
	DashboardReads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Subsystem: "dashboard",
		Name:      "reads_total",
		Help:      "Dashboard reader results by reader and state.",
	}, []string{"reader", "state"})
)

// ObserveBackend records one backend call. status 0 means the request never got a response.
func ObserveBackend(operation string, status int, elapsed time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	BackendRequests.WithLabelValues(operation, label).Inc()
	BackendDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}
