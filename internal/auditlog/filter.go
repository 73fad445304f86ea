package auditlog

import (
	"strings"
	"time"
)

// Filter narrows an event listing. Zero-value fields match everything.
type Filter struct {
	// EventType matches exactly when set.
	EventType string
	// DateStart and DateEnd bound CreatedAt, both ends inclusive.
	DateStart time.Time
	DateEnd   time.Time
	// Search matches case-insensitively as a substring of the reference id,
	// description, LEI or SAID. Any single field match keeps the event.
	Search string
}

// Apply returns the events passing the filter, preserving input order. It is
// a pure function: the input slice is never mutated and events are not copied
// beyond the result slice.
func Apply(events []AuditEvent, f Filter) []AuditEvent {
	search := strings.ToLower(f.Search)

	var out []AuditEvent
	for _, ev := range events {
		if f.EventType != "" && ev.EventType != f.EventType {
			continue
		}
		if !f.DateStart.IsZero() && ev.CreatedAt.Before(f.DateStart) {
			continue
		}
		if !f.DateEnd.IsZero() && ev.CreatedAt.After(f.DateEnd) {
			continue
		}
		if search != "" && !matchesSearch(ev, search) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

func matchesSearch(ev AuditEvent, search string) bool {
	for _, field := range []string{ev.ReferenceID, ev.Description, ev.LEI, ev.SAID} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}
