package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"leicca/internal/auditlog"
	dErrors "leicca/pkg/domain-errors"
	"leicca/pkg/platform/httputil"
	"leicca/pkg/requestcontext"
)

// Handler exposes the audit trail endpoints.
type Handler struct {
	service *auditlog.Service
	logger  *slog.Logger
}

// New constructs an auditlog handler.
func New(service *auditlog.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts audit endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/audit/events", h.HandleListEvents)
	r.Post("/audit/decrypt", h.HandleDecrypt)
}

// HandleListEvents handles GET /audit/events. Filters arrive as query
// parameters: eventType, dateStart, dateEnd (RFC 3339 or YYYY-MM-DD,
// inclusive) and search.
func (h *Handler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter := auditlog.Filter{
		EventType: r.URL.Query().Get("eventType"),
		Search:    r.URL.Query().Get("search"),
	}

	if raw := r.URL.Query().Get("dateStart"); raw != "" {
		start, _, err := parseDate(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.Newf(dErrors.CodeInvalidInput, "invalid dateStart %q", raw))
			return
		}
		filter.DateStart = start
	}
	if raw := r.URL.Query().Get("dateEnd"); raw != "" {
		end, dateOnly, err := parseDate(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.Newf(dErrors.CodeInvalidInput, "invalid dateEnd %q", raw))
			return
		}
		// A date-only upper bound means the whole of that day.
		if dateOnly {
			end = end.Add(24*time.Hour - time.Nanosecond)
		}
		filter.DateEnd = end
	}

	events, err := h.service.List(ctx, filter)
	if err != nil {
		h.logError(r, "audit listing failed", err)
		httputil.WriteError(w, err)
		return
	}
	if events == nil {
		events = []auditlog.AuditEvent{}
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}

// HandleDecrypt handles POST /audit/decrypt.
func (h *Handler) HandleDecrypt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.Decode[DecryptRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	decoded, err := h.service.DecryptCapsule(ctx, req.EncryptedHex)
	if err != nil {
		h.logError(r, "capsule decryption failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, decoded)
}

func parseDate(raw string) (t time.Time, dateOnly bool, err error) {
	if t, err = time.Parse(time.RFC3339, raw); err == nil {
		return t, false, nil
	}
	if t, err = time.Parse("2006-01-02", raw); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, err
}

func (h *Handler) logError(r *http.Request, msg string, err error) {
	if h.logger == nil {
		return
	}
	h.logger.ErrorContext(r.Context(), msg,
		"request_id", requestcontext.RequestID(r.Context()),
		"error", err,
	)
}
