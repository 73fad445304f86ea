package anchoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"leicca/internal/anchoring/metrics"
	"leicca/internal/capsule"
	"leicca/internal/chainquery"
	dErrors "leicca/pkg/domain-errors"
	"leicca/pkg/platform/sentinel"
)

// Recorder receives the outcome of every anchoring attempt. The coordinator
// records success and partial failure alike so the trail stays complete.
type Recorder interface {
	RecordAnchoring(ctx context.Context, result *Result, tags PublicTags) error
}

// Coordinator drives the anchoring workflow: canonicalize the capsule,
// encrypt, broadcast, then record the exact encrypted payload alongside the
// transaction id. Decryption later depends on those recorded bytes, so the
// recorded hex is always what the wallet produced, never a re-encryption.
type Coordinator struct {
	anchorer    Anchorer
	tracker     *chainquery.Tracker
	recorder    Recorder
	explorerURL string
	basket      string
	logger      *slog.Logger
	metrics     *metrics.Metrics
	tracer      trace.Tracer
}

// Option configures optional Coordinator dependencies.
type Option func(*Coordinator)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

// WithMetrics attaches anchoring metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// WithRecorder attaches the audit recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Coordinator) { c.recorder = r }
}

// NewCoordinator creates a Coordinator over the given anchorer and tracker.
func NewCoordinator(anchorer Anchorer, tracker *chainquery.Tracker, explorerURL, basket string, opts ...Option) *Coordinator {
	c := &Coordinator{
		anchorer:    anchorer,
		tracker:     tracker,
		explorerURL: explorerURL,
		basket:      basket,
		tracer:      otel.Tracer("leicca/anchoring"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Basket returns the wallet basket anchoring transactions land in.
func (c *Coordinator) Basket() string { return c.basket }

// SetRecorder wires the audit recorder after construction. The audit service
// decrypts through the coordinator, so the two reference each other and one
// side has to bind late. Call before serving traffic.
func (c *Coordinator) SetRecorder(r Recorder) { c.recorder = r }

// Anchor encrypts the capsule's canonical bytes and broadcasts them with the
// given public tags. Rejected tags, encryption failures, and broadcast
// failures are each reported inside the Result, never as a bare error, so
// every attempt reaches the recorder. A broadcast failure keeps the encrypted
// payload but reports no transaction id.
func (c *Coordinator) Anchor(ctx context.Context, cp *capsule.AuditCapsule, tags PublicTags) (*Result, error) {
	ctx, span := c.tracer.Start(ctx, "anchoring.Anchor")
	defer span.End()

	result := &Result{
		Basket:    c.basket,
		Timestamp: time.Now().UTC(),
	}

	if err := tags.Validate(); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("invalid tags: %v", err))
		c.metrics.IncrementAnchor("invalid_input")
		c.record(ctx, result, tags)
		c.warn(ctx, "anchoring tags rejected", tags.RecordID, err)
		return result, nil
	}

	canonical, err := capsule.Canonical(cp)
	if err != nil {
		c.metrics.IncrementAnchor("invalid_input")
		return nil, err
	}

	encryptedHex, err := c.anchorer.Encrypt(ctx, canonical)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("encryption failed: %v", err))
		c.metrics.IncrementAnchor("encrypt_failed")
		c.record(ctx, result, tags)
		c.warn(ctx, "capsule encryption failed", tags.RecordID, err)
		return result, nil
	}
	result.EncryptedHex = encryptedHex

	txid, err := c.anchorer.Submit(ctx, encryptedHex, tags)
	if err != nil {
		// Encrypted but not on chain. No txid may be reported for a
		// transaction that was never broadcast.
		result.Errors = append(result.Errors, fmt.Sprintf("broadcast failed: %v", err))
		c.metrics.IncrementAnchor("submit_failed")
		c.record(ctx, result, tags)
		c.warn(ctx, "anchoring broadcast failed", tags.RecordID, err)
		return result, nil
	}

	result.Success = true
	result.TxID = txid
	result.ExplorerURL = c.explorerURL + "/" + txid
	c.metrics.IncrementAnchor("ok")
	c.record(ctx, result, tags)

	if c.logger != nil {
		c.logger.InfoContext(ctx, "capsule anchored",
			"record_id", tags.RecordID,
			"txid", txid,
			"basket", c.basket,
		)
	}
	return result, nil
}

// Decrypt recovers a capsule from its recorded encrypted payload. The three
// failure states stay distinguishable: empty input, corrupted payload, and an
// unavailable decryption key.
func (c *Coordinator) Decrypt(ctx context.Context, encryptedHex string) (*capsule.AuditCapsule, error) {
	ctx, span := c.tracer.Start(ctx, "anchoring.Decrypt")
	defer span.End()

	if encryptedHex == "" {
		c.metrics.IncrementDecrypt("empty")
		return nil, dErrors.New(dErrors.CodeInvalidInput, "encrypted payload is empty")
	}

	plaintext, err := c.anchorer.Decrypt(ctx, encryptedHex)
	switch {
	case err == nil:
	case errors.Is(err, ErrKeyUnavailable):
		c.metrics.IncrementDecrypt("key_unavailable")
		return nil, dErrors.Wrap(err, dErrors.CodeKeyUnavailable, "decryption key unavailable")
	case errors.Is(err, sentinel.ErrUnavailable):
		c.metrics.IncrementDecrypt("unavailable")
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "wallet unavailable")
	default:
		c.metrics.IncrementDecrypt("corrupted")
		return nil, dErrors.Wrap(err, dErrors.CodeIntegrity, "payload could not be decrypted")
	}

	decoded, err := capsule.Decode(plaintext)
	if err != nil {
		c.metrics.IncrementDecrypt("corrupted")
		return nil, err
	}

	c.metrics.IncrementDecrypt("ok")
	return decoded, nil
}

// TemporalProof builds a point-in-time validity statement for an anchored
// capsule by pairing its verification result with the current confirmation
// state of the anchoring transaction.
func (c *Coordinator) TemporalProof(ctx context.Context, txid string, cp *capsule.AuditCapsule) (*TemporalProof, error) {
	conf, _, err := c.tracker.Check(ctx, txid)
	if err != nil {
		return nil, err
	}
	return NewTemporalProof(txid, cp.Verification, conf, time.Now()), nil
}

func (c *Coordinator) record(ctx context.Context, result *Result, tags PublicTags) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.RecordAnchoring(ctx, result, tags); err != nil {
		c.warn(ctx, "recording anchoring outcome failed", tags.RecordID, err)
	}
}

func (c *Coordinator) warn(ctx context.Context, msg, recordID string, err error) {
	if c.logger == nil {
		return
	}
	c.logger.WarnContext(ctx, msg, "record_id", recordID, "error", err)
}
