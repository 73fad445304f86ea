// Package chainquery is the single gateway to the external, rate-limited
// chain-data source. Every outbound query in the process flows through one
// shared Cache instance so the rate budget is never split across callers.
package chainquery

import "time"

// ProofStep is one sibling hash on the path from a transaction to the block
// Merkle root. Offset disambiguates left/right placement.
type ProofStep struct {
	Offset int64  `json:"offset"`
	Hash   string `json:"hash"`
}

// MerkleProof proves a transaction's inclusion in a block without the full
// block (SPV). BlockHeight is the height of the containing block.
type MerkleProof struct {
	TxID        string      `json:"txid"`
	BlockHeight int64       `json:"blockHeight"`
	MerkleRoot  string      `json:"merkleRoot"`
	Path        []ProofStep `json:"path"`
	Index       int64       `json:"index"`
}

// BlockConfirmation is a point-in-time confirmation reading for one
// transaction. It is always derived fresh from a proof and the current
// height, never persisted as a source of truth.
type BlockConfirmation struct {
	TxID          string    `json:"txid"`
	BlockHeight   int64     `json:"blockHeight"`
	Confirmations int64     `json:"confirmations"`
	CheckedAt     time.Time `json:"checkedAt"`
}

// TxStatus is the externally visible confirmation state of a transaction.
type TxStatus struct {
	Confirmed     bool  `json:"confirmed"`
	Confirmations int64 `json:"confirmations"`
	BlockHeight   int64 `json:"blockHeight,omitempty"`
}
