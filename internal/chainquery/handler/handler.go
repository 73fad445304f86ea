package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"leicca/internal/chainquery"
	dErrors "leicca/pkg/domain-errors"
	"leicca/pkg/platform/httputil"
	"leicca/pkg/requestcontext"
)

// Handler exposes the chain confirmation endpoints.
type Handler struct {
	cache   *chainquery.Cache
	tracker *chainquery.Tracker
	logger  *slog.Logger
}

// New constructs a chainquery handler with its dependencies.
func New(cache *chainquery.Cache, tracker *chainquery.Tracker, logger *slog.Logger) *Handler {
	return &Handler{cache: cache, tracker: tracker, logger: logger}
}

// Register mounts chain endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/merkle-proof", h.HandleMerkleProof)
	r.Post("/tx-status", h.HandleTxStatus)
	r.Get("/chain-height", h.HandleChainHeight)
}

// HandleMerkleProof handles POST /merkle-proof. An unconfirmed or unknown
// transaction answers 404 with an error body; the two states carry different
// descriptions so pollers can distinguish them.
func (h *Handler) HandleMerkleProof(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.Decode[TxRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if req.TxID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "txid is required"))
		return
	}

	proof, err := h.cache.MerkleProof(ctx, req.TxID)
	if err != nil {
		h.logError(r, requestID, "merkle proof lookup failed", req.TxID, err)
		httputil.WriteError(w, err)
		return
	}
	if proof == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "transaction not yet confirmed"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, proof)
}

// HandleTxStatus handles POST /tx-status. A transaction with no proof is a
// pending state, not an error: {confirmed:false, confirmations:0}.
func (h *Handler) HandleTxStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.Decode[TxRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if req.TxID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "txid is required"))
		return
	}

	status, err := h.tracker.Status(ctx, req.TxID)
	if err != nil {
		// An unknown transaction still reports as unconfirmed rather than
		// failing the poll; pollers see pending until the broadcast lands.
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			httputil.WriteJSON(w, http.StatusOK, chainquery.TxStatus{Confirmed: false, Confirmations: 0})
			return
		}
		h.logError(r, requestID, "tx status check failed", req.TxID, err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, status)
}

// HandleChainHeight handles GET /chain-height.
func (h *Handler) HandleChainHeight(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	height, err := h.cache.CurrentHeight(ctx)
	if err != nil {
		h.logError(r, requestID, "chain height lookup failed", "", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]int64{"height": height})
}

func (h *Handler) logError(r *http.Request, requestID, msg, txid string, err error) {
	if h.logger == nil {
		return
	}
	h.logger.ErrorContext(r.Context(), msg,
		"request_id", requestID,
		"txid", txid,
		"error", err,
	)
}
