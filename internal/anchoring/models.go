package anchoring

import (
	"time"

	"leicca/internal/chainquery"
	"leicca/internal/verification"
	dErrors "leicca/pkg/domain-errors"
)

// TagType is the fixed classification marker carried in public transaction
// tags. It identifies anchored records on chain without exposing payload data.
const TagType = "LEICCA-Classification"

// PublicTags are the cleartext labels attached to an anchoring transaction.
// They carry lookup keys only; the capsule payload itself is never duplicated
// here.
type PublicTags struct {
	Type         string `json:"type"`
	LEI          string `json:"lei,omitempty"`
	Jurisdiction string `json:"jurisdiction,omitempty"`
	Timestamp    string `json:"timestamp,omitempty"`
	RecordID     string `json:"recordId"`
}

// Validate checks tag invariants before submission.
func (t PublicTags) Validate() error {
	if t.Type != TagType {
		return dErrors.Newf(dErrors.CodeInvalidInput, "tag type must be %q", TagType)
	}
	if t.RecordID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "tag recordId is required")
	}
	return nil
}

// Result reports the outcome of one anchoring attempt. A partial failure,
// encrypted but not broadcast, carries the encrypted payload and errors but
// never a transaction id.
type Result struct {
	Success       bool      `json:"success"`
	TxID          string    `json:"txid,omitempty"`
	Basket        string    `json:"basket,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	BlockNumber   int64     `json:"blockNumber,omitempty"`
	Confirmations int64     `json:"confirmations"`
	ExplorerURL   string    `json:"explorerUrl,omitempty"`
	EncryptedHex  string    `json:"encryptedHex,omitempty"`
	Errors        []string  `json:"errors,omitempty"`
}

// TemporalProof binds a verification result to the chain state observed at
// anchoring time. It answers whether the credential was valid when the record
// was anchored, independent of later revocation.
type TemporalProof struct {
	TxID          string                        `json:"txid"`
	Verification  *verification.Result          `json:"verification"`
	Confirmation  *chainquery.BlockConfirmation `json:"confirmation"`
	ValidAtAnchor bool                          `json:"validAtAnchor"`
	GeneratedAt   time.Time                     `json:"generatedAt"`
}

// NewTemporalProof snapshots verification and confirmation state for a mined
// anchoring transaction.
func NewTemporalProof(txid string, ver *verification.Result, conf *chainquery.BlockConfirmation, now time.Time) *TemporalProof {
	valid := ver != nil && ver.Verified && conf != nil && conf.Confirmations > 0
	return &TemporalProof{
		TxID:          txid,
		Verification:  ver,
		Confirmation:  conf,
		ValidAtAnchor: valid,
		GeneratedAt:   now.UTC(),
	}
}
