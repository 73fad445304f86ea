package auditlog

import (
	"context"
	"sync"
)

// Store is the append-only event log. List returns events in insertion
// order; there is no update or delete.
type Store interface {
	Append(ctx context.Context, event AuditEvent) error
	List(ctx context.Context) ([]AuditEvent, error)
}

// MemoryStore is the in-process event log used when no database is
// configured. Reads work on copies so callers can never mutate the trail.
type MemoryStore struct {
	mu     sync.Mutex
	events []AuditEvent
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(ctx context.Context, event AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]AuditEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AuditEvent, len(s.events))
	copy(out, s.events)
	return out, nil
}
