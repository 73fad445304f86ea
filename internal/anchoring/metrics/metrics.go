package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the anchoring module.
type Metrics struct {
	// Anchoring attempts by outcome (ok, encrypt_failed, submit_failed,
	// invalid_input)
	Anchors *prometheus.CounterVec

	// Decrypt attempts by outcome (ok, empty, corrupted, key_unavailable,
	// unavailable)
	Decrypts *prometheus.CounterVec
}

// New creates a Metrics instance with all anchoring metrics registered.
func New() *Metrics {
	return &Metrics{
		Anchors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "leicca_anchoring_anchors_total",
			Help: "Total anchoring attempts by outcome",
		}, []string{"outcome"}),

		Decrypts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "leicca_anchoring_decrypts_total",
			Help: "Total capsule decrypt attempts by outcome",
		}, []string{"outcome"}),
	}
}

// IncrementAnchor records one anchoring attempt.
func (m *Metrics) IncrementAnchor(outcome string) {
	if m != nil {
		m.Anchors.WithLabelValues(outcome).Inc()
	}
}

// IncrementDecrypt records one decrypt attempt.
func (m *Metrics) IncrementDecrypt(outcome string) {
	if m != nil {
		m.Decrypts.WithLabelValues(outcome).Inc()
	}
}
