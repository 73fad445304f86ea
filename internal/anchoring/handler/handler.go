package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"leicca/internal/anchoring"
	"leicca/internal/capsule"
	dErrors "leicca/pkg/domain-errors"
	"leicca/pkg/platform/httputil"
	"leicca/pkg/requestcontext"
)

// Handler exposes the anchoring endpoints.
type Handler struct {
	coordinator *anchoring.Coordinator
	logger      *slog.Logger
}

// New constructs an anchoring handler.
func New(coordinator *anchoring.Coordinator, logger *slog.Logger) *Handler {
	return &Handler{coordinator: coordinator, logger: logger}
}

// Register mounts anchoring endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/anchor", h.HandleAnchor)
	r.Post("/temporal-proof", h.HandleTemporalProof)
}

// HandleAnchor handles POST /anchor. The response always carries an
// AnchoringResult; a partial failure answers 200 with success=false and the
// failure detail inside the result.
func (h *Handler) HandleAnchor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.Decode[AnchorRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if req.RecordID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "recordId is required"))
		return
	}

	now := requestcontext.Now(ctx)
	built, err := capsule.Build(req.Verification, req.Classification, req.Evidence,
		req.RecordID, req.Project, h.coordinator.Basket(), now)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	tags := anchoring.PublicTags{
		Type:         anchoring.TagType,
		LEI:          req.LEI,
		Jurisdiction: req.Jurisdiction,
		Timestamp:    now.UTC().Format(time.RFC3339),
		RecordID:     req.RecordID,
	}

	result, err := h.coordinator.Anchor(ctx, built, tags)
	if err != nil {
		h.logError(r, requestID, "anchoring request failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleTemporalProof handles POST /temporal-proof: recover the capsule from
// its recorded payload and pair it with the current confirmation state.
func (h *Handler) HandleTemporalProof(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.Decode[TemporalProofRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if req.TxID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "txid is required"))
		return
	}

	decoded, err := h.coordinator.Decrypt(ctx, req.EncryptedHex)
	if err != nil {
		h.logError(r, requestID, "temporal proof decryption failed", err)
		httputil.WriteError(w, err)
		return
	}

	proof, err := h.coordinator.TemporalProof(ctx, req.TxID, decoded)
	if err != nil {
		h.logError(r, requestID, "temporal proof check failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, proof)
}

func (h *Handler) logError(r *http.Request, requestID, msg string, err error) {
	if h.logger == nil {
		return
	}
	h.logger.ErrorContext(r.Context(), msg,
		"request_id", requestID,
		"error", err,
	)
}
