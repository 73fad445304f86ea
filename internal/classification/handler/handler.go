package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"leicca/internal/classification"
	dErrors "leicca/pkg/domain-errors"
	"leicca/pkg/platform/httputil"
	"leicca/pkg/requestcontext"
)

// Handler wires classification session endpoints to the engine.
type Handler struct {
	engine *classification.Engine
	logger *slog.Logger
}

// New constructs a classification handler with its dependencies.
func New(engine *classification.Engine, logger *slog.Logger) *Handler {
	return &Handler{engine: engine, logger: logger}
}

// Register mounts classification endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/classification/panels", h.HandleListPanels)
	r.Post("/classification/sessions", h.HandleStartSession)
	r.Post("/classification/sessions/{sessionID}/step", h.HandleStep)
}

// HandleListPanels handles GET /classification/panels.
func (h *Handler) HandleListPanels(w http.ResponseWriter, r *http.Request) {
	panels := h.engine.Panels()
	summaries := make([]PanelSummary, 0, len(panels))
	for _, p := range panels {
		summaries = append(summaries, PanelSummary{
			Panel:         p.PanelID,
			Jurisdictions: p.JurisdictionCodes,
			Nodes:         p.NodeCount(),
		})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"panels": summaries})
}

// HandleStartSession handles POST /classification/sessions.
func (h *Handler) HandleStartSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.Decode[StartSessionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if req.Panel == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "panel is required"))
		return
	}

	sessionID, session, err := h.engine.StartSession(req.Panel)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if h.logger != nil {
		h.logger.InfoContext(ctx, "classification session started",
			"request_id", requestID,
			"panel", req.Panel,
			"session_id", sessionID,
		)
	}

	httputil.WriteJSON(w, http.StatusCreated, SessionResponse{
		SessionID: sessionID,
		Done:      false,
		Node:      renderNode(session.Current()),
	})
}

// HandleStep handles POST /classification/sessions/{sessionID}/step.
func (h *Handler) HandleStep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	sessionID := chi.URLParam(r, "sessionID")

	req, ok := httputil.Decode[StepRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, session, err := h.engine.Step(sessionID, req.Input)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	resp := StepResponse{}
	if result != nil {
		resp.Done = true
		resp.Result = result
	} else {
		resp.Node = renderNode(session.Current())
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
