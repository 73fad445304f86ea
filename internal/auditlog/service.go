package auditlog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"leicca/internal/anchoring"
	"leicca/internal/auditlog/metrics"
	"leicca/internal/capsule"
	dErrors "leicca/pkg/domain-errors"
	"leicca/pkg/hashutil"
	"leicca/pkg/requestcontext"
)

// Decryptor recovers capsules from their recorded encrypted payloads.
// Implemented by the anchoring coordinator.
type Decryptor interface {
	Decrypt(ctx context.Context, encryptedHex string) (*capsule.AuditCapsule, error)
}

// Service maintains the append-only audit trail and serves filtered listings
// and on-demand capsule decryption.
type Service struct {
	store     Store
	publisher Publisher
	decryptor Decryptor
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// Option configures optional Service dependencies.
type Option func(*Service)

// WithPublisher mirrors recorded events to a downstream publisher.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics attaches auditlog metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates the audit service over the given store.
func NewService(store Store, decryptor Decryptor, opts ...Option) *Service {
	s := &Service{store: store, decryptor: decryptor}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record appends one event to the trail. Missing id and timestamp are filled
// in; everything else is stored exactly as given.
func (s *Service) Record(ctx context.Context, event AuditEvent) (AuditEvent, error) {
	if event.EventType == "" {
		return AuditEvent{}, dErrors.New(dErrors.CodeInvalidInput, "event type is required")
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = requestcontext.Now(ctx)
	}
	event.CreatedAt = event.CreatedAt.UTC()

	if err := s.store.Append(ctx, event); err != nil {
		return AuditEvent{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "audit append failed")
	}
	s.metrics.IncrementEvent(event.EventType)

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, event); err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "audit event publish failed", "event_id", event.ID, "error", err)
		}
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "audit event recorded",
			"event_id", event.ID,
			"event_type", event.EventType,
			"reference_id", event.ReferenceID,
		)
	}
	return event, nil
}

// List returns the filtered trail in insertion order.
func (s *Service) List(ctx context.Context, f Filter) ([]AuditEvent, error) {
	events, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "audit listing failed")
	}
	s.metrics.IncrementListing(f != Filter{})
	return Apply(events, f), nil
}

// DecryptCapsule recovers an anchored capsule and records the access. Reading
// decrypted payloads is itself an auditable action.
func (s *Service) DecryptCapsule(ctx context.Context, encryptedHex string) (*capsule.AuditCapsule, error) {
	decoded, err := s.decryptor.Decrypt(ctx, encryptedHex)
	if err != nil {
		return nil, err
	}

	_, recordErr := s.Record(ctx, AuditEvent{
		EventType:   EventCapsuleDecrypted,
		ReferenceID: decoded.Metadata.RecordID,
		Description: fmt.Sprintf("capsule decrypted by %s", requestcontext.Actor(ctx)),
	})
	if recordErr != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "recording decrypt access failed", "error", recordErr)
	}
	return decoded, nil
}

// RecordEvidence implements evidence.Recorder: every stored evidence file
// lands in the trail keyed by its content hash.
func (s *Service) RecordEvidence(ctx context.Context, file capsule.EvidenceFile) error {
	_, err := s.Record(ctx, AuditEvent{
		EventType:   EventEvidenceStored,
		ReferenceID: file.Hash,
		Description: fmt.Sprintf("evidence %s stored (%d bytes)", file.Filename, file.Size),
	})
	return err
}

// RecordAnchoring implements anchoring.Recorder: every anchoring attempt,
// successful or partial, lands in the trail with the exact encrypted payload.
func (s *Service) RecordAnchoring(ctx context.Context, result *anchoring.Result, tags anchoring.PublicTags) error {
	event := AuditEvent{
		ReferenceID:  tags.RecordID,
		LEI:          tags.LEI,
		TxID:         result.TxID,
		EncryptedHex: result.EncryptedHex,
		CreatedAt:    result.Timestamp,
	}
	if result.Success {
		event.EventType = EventAnchorSucceeded
		event.Description = fmt.Sprintf("capsule anchored in tx %s", hashutil.Truncate(result.TxID, 8, 8))
	} else {
		event.EventType = EventAnchorFailed
		event.Description = fmt.Sprintf("anchoring failed: %v", result.Errors)
	}

	_, err := s.Record(ctx, event)
	return err
}
