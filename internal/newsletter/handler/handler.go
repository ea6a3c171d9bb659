// Package handler exposes the newsletter CRUD endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"olivecrm/internal/newsletter/models"
	dErrors "olivecrm/pkg/domain-errors"
	"olivecrm/pkg/platform/httputil"
)

// Service defines the newsletter operations the handler exposes.
type Service interface {
	Create(ctx context.Context, n models.Newsletter) (models.Newsletter, error)
	Update(ctx context.Context, n models.Newsletter) (models.Newsletter, error)
	Get(ctx context.Context, id int) (models.Newsletter, error)
	List(ctx context.Context) ([]models.Newsletter, error)
	Delete(ctx context.Context, id int) error
}

// Handler wires newsletter endpoints to the newsletter service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a newsletter handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts newsletter endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/newsletters", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Get("/{id}", h.HandleGet)
		r.Put("/{id}", h.HandleUpdate)
		r.Delete("/{id}", h.HandleDelete)
	})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	newsletters, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if newsletters == nil {
		newsletters = []models.Newsletter{}
	}
	httputil.WriteJSON(w, http.StatusOK, newsletters)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var n models.Newsletter
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	created, err := h.service.Create(r.Context(), n)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	n, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, n)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var n models.Newsletter
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	n.ID = id

	updated, err := h.service.Update(r.Context(), n)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, updated)
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
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "newsletter id must be a positive integer"))
		return 0, false
	}
	return id, true
}
