package capsule

import (
	"bytes"
	"encoding/json"
	"time"

	"leicca/internal/classification"
	"leicca/internal/verification"
	dErrors "leicca/pkg/domain-errors"
)

// Build assembles an immutable capsule. Pure construction: no I/O, no clock
// reads beyond the caller-supplied timestamp.
func Build(
	ver *verification.Result,
	cls *classification.Result,
	evidence []EvidenceFile,
	recordID string,
	project, basket string,
	timestamp time.Time,
) (*AuditCapsule, error) {
	if recordID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "recordId is required")
	}

	// Copy evidence so the capsule does not alias caller-owned slices.
	ev := make([]EvidenceFile, len(evidence))
	copy(ev, evidence)

	return &AuditCapsule{
		Version:        Version,
		Verification:   ver,
		Classification: cls,
		Evidence:       ev,
		Metadata: Metadata{
			Timestamp: timestamp.UTC(),
			Project:   project,
			Basket:    basket,
			RecordID:  recordID,
		},
	}, nil
}

// Canonical serializes the capsule to its canonical byte form: compact JSON
// with the fixed v1 field order. These are the exact bytes that get encrypted
// and the only form later decryption must reproduce byte for byte.
func Canonical(c *AuditCapsule) ([]byte, error) {
	if c == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "capsule is nil")
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(c); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "capsule serialization failed")
	}
	// Encoder appends a trailing newline that is not part of the canonical form.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// versionProbe reads only the discriminator so Decode can dispatch before
// committing to a schema shape.
type versionProbe struct {
	Version int `json:"version"`
}

// Decode parses canonical bytes back into a capsule, dispatching on the
// version field rather than assuming the latest shape.
func Decode(data []byte) (*AuditCapsule, error) {
	if len(data) == 0 {
		return nil, dErrors.New(dErrors.CodeIntegrity, "empty capsule payload")
	}

	var probe versionProbe
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeIntegrity, "corrupted capsule payload")
	}

	switch probe.Version {
	case 1:
		var c AuditCapsule
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeIntegrity, "corrupted v1 capsule payload")
		}
		return &c, nil
	default:
		return nil, dErrors.Newf(dErrors.CodeIntegrity, "unsupported capsule version %d", probe.Version)
	}
}
