// Package capsule builds and canonically serializes audit capsules. The
// canonical byte form is what gets encrypted and anchored, so field order and
// encoding are fixed per schema version: re-serializing an identical logical
// capsule always produces identical bytes.
package capsule

import (
	"time"

	"leicca/internal/classification"
	"leicca/internal/verification"
)

// Version identifies the capsule schema family. Decoding dispatches on this
// field; any future field addition bumps the version and keeps older versions
// decodable.
const Version = 1

// EvidenceFile is the metadata of one uploaded supporting document. The hash
// is computed once at upload time and never recomputed.
type EvidenceFile struct {
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	Mimetype   string    `json:"mimetype"`
	Hash       string    `json:"hash"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Metadata carries the capsule's bookkeeping fields. RecordID is assigned
// once per classification session and is stable for the life of the capsule;
// a later correction produces a new capsule with a new RecordID.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	Project   string    `json:"project"`
	Basket    string    `json:"basket"`
	RecordID  string    `json:"recordId"`
}

// AuditCapsule is the canonical bundle of verification, classification, and
// evidence metadata. It is immutable once built.
//
// Field order below defines the v1 canonical serialization; do not reorder.
type AuditCapsule struct {
	Version        int                    `json:"version"`
	Verification   *verification.Result   `json:"verification"`
	Classification *classification.Result `json:"classification"`
	Evidence       []EvidenceFile         `json:"evidence"`
	Metadata       Metadata               `json:"metadata"`
}
