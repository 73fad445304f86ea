// Package verification defines the boundary to the external credential
// verifier. The cryptographic verification of key-event logs is performed by
// an outside collaborator; this package only fixes the contract the rest of
// the system consumes.
package verification

import (
	"context"
	"time"
)

// Result is the outcome of verifying a raw credential string.
type Result struct {
	Verified     bool        `json:"verified"`
	Credential   *Credential `json:"credential,omitempty"`
	Jurisdiction string      `json:"jurisdiction,omitempty"`
	Errors       []string    `json:"errors,omitempty"`
	Method       string      `json:"verificationMethod"`
	Timestamp    time.Time   `json:"timestamp"`
}

// Credential holds the parsed attributes of a verified credential.
type Credential struct {
	SAID   string `json:"said"`
	LEI    string `json:"lei"`
	Issuer string `json:"issuer"`
	Schema string `json:"schema"`
}

// Verifier consumes a raw credential string and produces a Result.
type Verifier interface {
	Verify(ctx context.Context, rawCredential string) (*Result, error)
}

// StaticVerifier returns a fixed result for every credential. It stands in
// for the external verifier in tests and local development.
type StaticVerifier struct {
	Result Result
}

func (v *StaticVerifier) Verify(ctx context.Context, rawCredential string) (*Result, error) {
	r := v.Result
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
	if r.Method == "" {
		r.Method = "static"
	}
	return &r, nil
}
