package mailer

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/go-chi/chi/v5"

	dErrors "olivecrm/pkg/domain-errors"
	"olivecrm/pkg/platform/httputil"
	"olivecrm/pkg/requestcontext"
)

// Handler exposes the email sending endpoint.
type Handler struct {
	sender Sender
	logger *slog.Logger
}

// NewHandler constructs the mail handler.
func NewHandler(sender Sender, logger *slog.Logger) *Handler {
	return &Handler{sender: sender, logger: logger}
}

// Register mounts the email endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/email/send", h.HandleSend)
}

type sendRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// HandleSend handles POST /email/send.
func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.Body) == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "subject and body must not be empty"))
		return
	}
	if _, err := mail.ParseAddress(req.To); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid recipient address"))
		return
	}

	if err := h.sender.Send(ctx, req.To, req.Subject, req.Body); err != nil {
		h.logger.ErrorContext(ctx, "mail delivery failed",
			"request_id", requestcontext.RequestID(ctx),
			"to", req.To,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to send mail"))
		return
	}

	h.logger.InfoContext(ctx, "mail sent",
		"request_id", requestcontext.RequestID(ctx),
		"to", req.To,
	)
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}
