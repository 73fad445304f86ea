package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the auditlog module.
type Metrics struct {
	// Events appended to the trail, by event type
	EventsRecorded *prometheus.CounterVec

	// Listing queries served, by whether a filter was applied
	Listings *prometheus.CounterVec
}

// New creates a Metrics instance with all auditlog metrics registered.
func New() *Metrics {
	return &Metrics{
		EventsRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "leicca_auditlog_events_total",
			Help: "Total audit events recorded by event type",
		}, []string{"event_type"}),

		Listings: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "leicca_auditlog_listings_total",
			Help: "Total audit listing queries by filter usage",
		}, []string{"filtered"}),
	}
}

// IncrementEvent records one appended audit event.
func (m *Metrics) IncrementEvent(eventType string) {
	if m != nil {
		m.EventsRecorded.WithLabelValues(eventType).Inc()
	}
}

// IncrementListing records one listing query.
func (m *Metrics) IncrementListing(filtered bool) {
	if m != nil {
		label := "no"
		if filtered {
			label = "yes"
		}
		m.Listings.WithLabelValues(label).Inc()
	}
}
