package auditlog_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leicca/internal/auditlog"
)

func day(d int) time.Time {
	return time.Date(2026, 3, d, 12, 0, 0, 0, time.UTC)
}

func trailFixture() []auditlog.AuditEvent {
	return []auditlog.AuditEvent{
		{ID: "1", EventType: auditlog.EventAnchorSucceeded, ReferenceID: "rec-001", Description: "capsule anchored", LEI: "529900T8BM49AURSDO55", CreatedAt: day(1)},
		{ID: "2", EventType: auditlog.EventAnchorFailed, ReferenceID: "rec-002", Description: "anchoring failed: broadcast", CreatedAt: day(2)},
		{ID: "3", EventType: auditlog.EventCapsuleDecrypted, ReferenceID: "rec-001", Description: "capsule decrypted by auditor", SAID: "EFg3Hs9yMb", CreatedAt: day(3)},
		{ID: "4", EventType: auditlog.EventAnchorSucceeded, ReferenceID: "rec-003", Description: "capsule anchored", LEI: "213800D1EI4B9WTWWD28", CreatedAt: day(4)},
	}
}

func ids(events []auditlog.AuditEvent) []string {
	var out []string
	for _, ev := range events {
		out = append(out, ev.ID)
	}
	return out
}

func TestApplyEmptyFilterKeepsEverything(t *testing.T) {
	events := trailFixture()
	got := auditlog.Apply(events, auditlog.Filter{})
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(got))
}

func TestApplyEventType(t *testing.T) {
	got := auditlog.Apply(trailFixture(), auditlog.Filter{EventType: auditlog.EventAnchorSucceeded})
	assert.Equal(t, []string{"1", "4"}, ids(got))
}

func TestApplyDateRangeInclusive(t *testing.T) {
	got := auditlog.Apply(trailFixture(), auditlog.Filter{DateStart: day(2), DateEnd: day(3)})
	assert.Equal(t, []string{"2", "3"}, ids(got), "both range ends are inclusive")
}

func TestApplySearch(t *testing.T) {
	tests := []struct {
		name   string
		search string
		want   []string
	}{
		{"reference id", "rec-001", []string{"1", "3"}},
		{"description substring", "broadcast", []string{"2"}},
		{"lei", "213800d1ei4b9wtwwd28", []string{"4"}},
		{"said", "efg3hs9", []string{"3"}},
		{"case insensitive", "CAPSULE ANCHORED", []string{"1", "4"}},
		{"no match", "zzz", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := auditlog.Apply(trailFixture(), auditlog.Filter{Search: tc.search})
			assert.Equal(t, tc.want, ids(got))
		})
	}
}

func TestApplyCombinedFilters(t *testing.T) {
	got := auditlog.Apply(trailFixture(), auditlog.Filter{
		EventType: auditlog.EventAnchorSucceeded,
		DateStart: day(2),
		Search:    "anchored",
	})
	assert.Equal(t, []string{"4"}, ids(got))
}

func TestApplyIsPure(t *testing.T) {
	events := trailFixture()
	before := make([]auditlog.AuditEvent, len(events))
	copy(before, events)

	_ = auditlog.Apply(events, auditlog.Filter{EventType: auditlog.EventAnchorFailed, Search: "rec"})
	require.Equal(t, before, events, "filtering must never mutate its input")
}
