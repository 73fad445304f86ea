package chainquery

import (
	"context"
	"time"

	"leicca/internal/chainquery/metrics"
)

// DefaultConfirmationThreshold is the finality policy for the target chain:
// six confirmations is the standard probabilistic-finality bar. It is a
// policy constant, overridable only through explicit configuration, never
// scattered through call sites.
const DefaultConfirmationThreshold = 6

// ConfirmationState labels the finality progress of a transaction.
type ConfirmationState string

const (
	// StatePending: no inclusion proof yet, the transaction sits in the
	// mempool. Expected transient state, not a failure.
	StatePending ConfirmationState = "pending"
	// StateConfirming: mined but below the finality threshold.
	StateConfirming ConfirmationState = "confirming"
	// StateConfirmed: buried under enough blocks to be treated as final.
	StateConfirmed ConfirmationState = "confirmed"
)

// Confirmations computes the confirmation count for a transaction mined at
// blockHeight given the current tip height. The containing block itself
// counts as one confirmation. A stale height read (tip below the proof's
// block) clamps to zero rather than going negative.
func Confirmations(currentHeight, blockHeight int64) int64 {
	n := currentHeight - blockHeight + 1
	if n < 0 {
		return 0
	}
	return n
}

// Tracker derives confirmation counts and finality from Cache results.
type Tracker struct {
	cache     *Cache
	threshold int64
	metrics   *metrics.Metrics
}

// NewTracker creates a tracker over the shared cache. A non-positive
// threshold selects the default finality policy.
func NewTracker(cache *Cache, threshold int, m *metrics.Metrics) *Tracker {
	t := int64(threshold)
	if t <= 0 {
		t = DefaultConfirmationThreshold
	}
	return &Tracker{cache: cache, threshold: t, metrics: m}
}

// Threshold returns the finality threshold in force.
func (t *Tracker) Threshold() int64 { return t.threshold }

// Check performs one confirmation round for txid: proof first, then the tip
// height, in that order, so the confirmation math never uses a height older
// than the proof being evaluated. One call is one external round-trip pair;
// the tracker never schedules its own polling.
func (t *Tracker) Check(ctx context.Context, txid string) (*BlockConfirmation, ConfirmationState, error) {
	proof, err := t.cache.MerkleProof(ctx, txid)
	if err != nil {
		return nil, "", err
	}

	now := time.Now().UTC()
	if proof == nil {
		t.metrics.IncrementConfirmationCheck(string(StatePending))
		return &BlockConfirmation{TxID: txid, BlockHeight: 0, Confirmations: 0, CheckedAt: now}, StatePending, nil
	}

	height, err := t.cache.CurrentHeight(ctx)
	if err != nil {
		return nil, "", err
	}

	conf := &BlockConfirmation{
		TxID:          txid,
		BlockHeight:   proof.BlockHeight,
		Confirmations: Confirmations(height, proof.BlockHeight),
		CheckedAt:     now,
	}

	state := StateConfirming
	if conf.Confirmations >= t.threshold {
		state = StateConfirmed
	}
	t.metrics.IncrementConfirmationCheck(string(state))
	return conf, state, nil
}

// Status maps a confirmation round to the external tx-status shape.
func (t *Tracker) Status(ctx context.Context, txid string) (*TxStatus, error) {
	conf, state, err := t.Check(ctx, txid)
	if err != nil {
		return nil, err
	}
	return &TxStatus{
		Confirmed:     state == StateConfirmed,
		Confirmations: conf.Confirmations,
		BlockHeight:   conf.BlockHeight,
	}, nil
}
