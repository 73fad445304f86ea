package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the classification module.
type Metrics struct {
	SessionsStarted *prometheus.CounterVec
	Outcomes        *prometheus.CounterVec
}

// New creates a Metrics instance with all classification metrics registered.
func New() *Metrics {
	return &Metrics{
		SessionsStarted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "leicca_classification_sessions_started_total",
			Help: "Total classification sessions started by panel",
		}, []string{"panel"}),

		Outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "leicca_classification_outcomes_total",
			Help: "Total completed classifications by panel and classification",
		}, []string{"panel", "classification"}),
	}
}

// IncrementSessionsStarted records a new session for a panel.
func (m *Metrics) IncrementSessionsStarted(panel string) {
	if m != nil {
		m.SessionsStarted.WithLabelValues(panel).Inc()
	}
}

// IncrementOutcome records a completed classification.
func (m *Metrics) IncrementOutcome(panel, classification string) {
	if m != nil {
		m.Outcomes.WithLabelValues(panel, classification).Inc()
	}
}
