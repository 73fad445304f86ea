package handler

import (
	"leicca/internal/capsule"
	"leicca/internal/classification"
	"leicca/internal/verification"
)

// AnchorRequest carries everything needed to build and anchor one capsule.
type AnchorRequest struct {
	RecordID       string                 `json:"recordId"`
	Project        string                 `json:"project"`
	Verification   *verification.Result   `json:"verification"`
	Classification *classification.Result `json:"classification"`
	Evidence       []capsule.EvidenceFile `json:"evidence"`
	LEI            string                 `json:"lei,omitempty"`
	Jurisdiction   string                 `json:"jurisdiction,omitempty"`
}

// TemporalProofRequest identifies an anchored capsule by transaction and
// recorded payload.
type TemporalProofRequest struct {
	TxID         string `json:"txid"`
	EncryptedHex string `json:"encryptedHex"`
}
