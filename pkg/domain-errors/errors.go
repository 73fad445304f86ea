// Package domainerrors provides typed domain errors with stable codes.
//
// Services return these so transport layers can map failures to HTTP statuses
// without string matching, and so callers can branch on failure class with
// HasCode. Infrastructure facts (not found, unavailable) live in
// pkg/platform/sentinel; this package is for errors that carry meaning for
// the caller.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies the class of a domain error.
type Code string

const (
	// CodeInvalidInput marks malformed caller input (bad txid, missing field).
	// The caller is at fault; retrying the same request will not help.
	CodeInvalidInput Code = "invalid_input"

	// CodeBadRequest marks a structurally invalid request body.
	CodeBadRequest Code = "bad_request"

	// CodeNotFound marks a missing entity (unknown panel, unknown transaction).
	CodeNotFound Code = "not_found"

	// CodeUnauthorized marks missing or invalid authentication.
	CodeUnauthorized Code = "unauthorized"

	// CodeUnavailable marks an external collaborator failure (chain source
	// down, rate budget exhausted upstream). Callers may retry with backoff;
	// the core never retries on its own.
	CodeUnavailable Code = "unavailable"

	// CodeIntegrity marks corrupted or tampered data (undecryptable payload,
	// hash mismatch). Fatal for the attempt, never silently ignored.
	CodeIntegrity Code = "integrity_error"

	// CodeKeyUnavailable marks a decryption key that is not accessible.
	// Kept distinct from CodeIntegrity so callers can present a different
	// message for "key unavailable" versus "corrupted data".
	CodeKeyUnavailable Code = "key_unavailable"

	// CodeInvariantViolation marks an internal consistency failure, such as a
	// malformed decision-tree panel rejected at load time.
	CodeInvariantViolation Code = "invariant_violation"

	// CodeConfiguration marks missing or invalid startup configuration.
	CodeConfiguration Code = "configuration_error"

	// CodeInternal marks an unexpected failure that should not leak details.
	CodeInternal Code = "internal_error"
)

// Error is a domain error with a code and a human-readable message.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a domain error with the given code and message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap annotates err with a code and message while preserving the chain.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	for err != nil {
		var de *Error
		if !errors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}

// GetCode returns the outermost domain error code, or CodeInternal when the
// error carries no code.
func GetCode(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// Is delegates to errors.Is so callers need a single import.
func Is(err, target error) bool { return errors.Is(err, target) }
