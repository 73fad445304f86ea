package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"leicca/internal/evidence"
	dErrors "leicca/pkg/domain-errors"
	"leicca/pkg/platform/httputil"
	"leicca/pkg/requestcontext"
)

// maxUploadBytes bounds one evidence file. Larger documents belong in
// external storage referenced by hash.
const maxUploadBytes = 32 << 20

// Handler exposes evidence upload and retrieval.
type Handler struct {
	service *evidence.Service
	logger  *slog.Logger
}

// New constructs an evidence handler.
func New(service *evidence.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts evidence endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/evidence", h.HandleUpload)
	r.Get("/evidence/{hash}", h.HandleFetch)
}

// HandleUpload handles POST /evidence as multipart form data. Every file in
// the "files" field is hashed and stored; the response lists the metadata in
// upload order.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid multipart upload"))
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "no files in upload"))
		return
	}

	uploads := make([]evidence.Upload, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInvalidInput, "unreadable upload"))
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
		f.Close()
		if err != nil {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInvalidInput, "unreadable upload"))
			return
		}
		uploads = append(uploads, evidence.Upload{
			Filename: header.Filename,
			Mimetype: header.Header.Get("Content-Type"),
			Data:     data,
		})
	}

	files, err := h.service.StoreAll(ctx, uploads, requestcontext.Now(ctx))
	if err != nil {
		h.logError(r, "evidence upload failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"files": files})
}

// HandleFetch handles GET /evidence/{hash}, answering the raw stored bytes.
func (h *Handler) HandleFetch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hash := chi.URLParam(r, "hash")

	data, err := h.service.Fetch(ctx, hash)
	if err != nil {
		h.logError(r, "evidence fetch failed", err)
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
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
