package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)

	// Business metrics
	loanApplicationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loan_applications_total",
			Help: "Total number of submitted loan applications",
		},
	)

	loanDeletionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loan_deletions_total",
			Help: "Total number of deleted loan applications",
		},
	)

	loanStatusTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_status_transitions_total",
			Help: "Total number of loan status transitions",
		},
		[]string{"from", "to"},
	)

	identityVerificationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "identity_verifications_total",
			Help: "Total number of identity verification syncs",
		},
	)
)

// RecordHTTPRequest records metrics for a completed HTTP request.
func RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	s := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, endpoint, s).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, s).Observe(duration.Seconds())
}

func RecordLoanApplication() { loanApplicationsTotal.Inc() }

func RecordLoanDeletion() { loanDeletionsTotal.Inc() }

func RecordIdentityVerification() { identityVerificationsTotal.Inc() }

func RecordStatusTransition(from, to string) {
	loanStatusTransitionsTotal.WithLabelValues(from, to).Inc()
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
