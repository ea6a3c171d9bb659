package ingest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	dErrors "olivecrm/pkg/domain-errors"
	"olivecrm/pkg/platform/httputil"
	"olivecrm/pkg/requestcontext"
)

// 32 MiB multipart memory cap; larger files spill to disk.
const maxUploadMemory = 32 << 20

// Handler exposes the CSV upload endpoint.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs the ingestion handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the upload endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/csv/upload", h.HandleUpload)
}

// HandleUpload handles POST /csv/upload. The CSV rides in the "file" part of
// a multipart form.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "expected a multipart form upload"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "missing file part"))
		return
	}
	defer file.Close()

	summary, err := h.service.Ingest(ctx, file)
	if err != nil {
		h.logger.ErrorContext(ctx, "csv upload failed",
			"request_id", requestcontext.RequestID(ctx),
			"filename", header.Filename,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "csv upload ingested",
		"request_id", requestcontext.RequestID(ctx),
		"filename", header.Filename,
		"rows", summary.RowsIngested,
	)
	httputil.WriteJSON(w, http.StatusOK, summary)
}
