package auditlog

import "time"

// Event types recorded by the service.
const (
	EventAnchorSucceeded  = "anchor.succeeded"
	EventAnchorFailed     = "anchor.failed"
	EventCapsuleDecrypted = "capsule.decrypted"
	EventEvidenceStored   = "evidence.stored"
)

// AuditEvent is one immutable entry in the append-only trail. Events are
// never updated or deleted; corrections append new events.
type AuditEvent struct {
	ID           string    `json:"id"`
	EventType    string    `json:"eventType"`
	ReferenceID  string    `json:"referenceId"`
	Description  string    `json:"description"`
	LEI          string    `json:"lei,omitempty"`
	SAID         string    `json:"said,omitempty"`
	TxID         string    `json:"txid,omitempty"`
	EncryptedHex string    `json:"encryptedHex,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
