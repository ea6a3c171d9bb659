// Package handler exposes the customer CRUD endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"olivecrm/internal/customer/models"
	dErrors "olivecrm/pkg/domain-errors"
	"olivecrm/pkg/platform/httputil"
	"olivecrm/pkg/requestcontext"
)

// Service defines the customer operations the handler exposes.
type Service interface {
	Save(ctx context.Context, c models.Customer) (models.Customer, error)
	Get(ctx context.Context, id int) (models.Customer, error)
	List(ctx context.Context) ([]models.Customer, error)
	Delete(ctx context.Context, id int) error
}

// Handler wires customer endpoints to the customer service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a customer handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts customer endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleSave)
		r.Get("/{id}", h.HandleGet)
		r.Put("/{id}", h.HandleUpdate)
		r.Delete("/{id}", h.HandleDelete)
	})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "customer listing failed",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if customers == nil {
		customers = []models.Customer{}
	}
	httputil.WriteJSON(w, http.StatusOK, customers)
}

func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	var c models.Customer
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	saved, err := h.service.Save(r.Context(), c)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, saved)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var c models.Customer
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	// The path id wins over any id in the body.
	c.ID = id

	// Updating an unknown customer is a save; ids are external, so PUT is an
	// upsert just like the ingestion path.
	saved, err := h.service.Save(r.Context(), c)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, saved)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func idParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "customer id must be a positive integer"))
		return 0, false
	}
	return id, true
}
