// Package httputil centralizes JSON encoding and domain-error mapping for
// HTTP handlers so individual handlers stay focused on their own concerns.
package httputil

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	dErrors "leicca/pkg/domain-errors"
)

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody is the wire shape for error responses. error_description is
// omitted for internal errors so implementation details never leak.
type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteError maps a domain error to an HTTP status and JSON body.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.GetCode(err)
	status := statusForCode(code)

	body := errorBody{Error: string(code)}
	if code != dErrors.CodeInternal {
		if de, ok := err.(*dErrors.Error); ok {
			body.ErrorDescription = de.Message
		} else {
			body.ErrorDescription = err.Error()
		}
	}

	WriteJSON(w, status, body)
}

func statusForCode(code dErrors.Code) int {
	switch code {
	case dErrors.CodeInvalidInput, dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	case dErrors.CodeIntegrity, dErrors.CodeKeyUnavailable:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Decode parses the request body into T, writing a 400 response and logging
// on failure. The second return value reports whether decoding succeeded.
func Decode[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if logger != nil {
			logger.WarnContext(ctx, "request body decode failed",
				"request_id", requestID,
				"error", err,
			)
		}
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		var zero T
		return zero, false
	}
	return req, true
}
