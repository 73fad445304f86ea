package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the chainquery module.
type Metrics struct {
	// Queries by operation and outcome (ok, cache_hit, coalesced,
	// unconfirmed, not_found, error)
	Queries *prometheus.CounterVec

	// Time spent waiting on the shared outbound rate budget
	LimiterWait *prometheus.HistogramVec

	// Confirmation checks by resulting state (pending, confirming, confirmed)
	ConfirmationChecks *prometheus.CounterVec
}

// New creates a Metrics instance with all chainquery metrics registered.
func New() *Metrics {
	return &Metrics{
		Queries: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "leicca_chainquery_queries_total",
			Help: "Total chain source queries by operation and outcome",
		}, []string{"op", "outcome"}),

		LimiterWait: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "leicca_chainquery_limiter_wait_seconds",
			Help:    "Time spent waiting on the shared outbound rate limiter",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"op"}),

		ConfirmationChecks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "leicca_chainquery_confirmation_checks_total",
			Help: "Total confirmation checks by resulting state",
		}, []string{"state"}),
	}
}

// IncrementQuery records one chain source query.
func (m *Metrics) IncrementQuery(op, outcome string) {
	if m != nil {
		m.Queries.WithLabelValues(op, outcome).Inc()
	}
}

// ObserveLimiterWait records time spent blocked on the rate budget.
func (m *Metrics) ObserveLimiterWait(op string, d time.Duration) {
	if m != nil {
		m.LimiterWait.WithLabelValues(op).Observe(d.Seconds())
	}
}

// IncrementConfirmationCheck records one confirmation check result.
func (m *Metrics) IncrementConfirmationCheck(state string) {
	if m != nil {
		m.ConfirmationChecks.WithLabelValues(state).Inc()
	}
}
