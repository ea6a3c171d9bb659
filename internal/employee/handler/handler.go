// Package handler exposes employee management and login endpoints. The
// management routes sit behind JWT auth; login does not.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"olivecrm/internal/employee/models"
	"olivecrm/internal/employee/service"
	dErrors "olivecrm/pkg/domain-errors"
	"olivecrm/pkg/platform/httputil"
	"olivecrm/pkg/requestcontext"
)

// Service defines the employee operations the handler exposes.
type Service interface {
	Create(ctx context.Context, in service.CreateInput) (models.Employee, error)
	Update(ctx context.Context, id int, in service.UpdateInput) (models.Employee, error)
	Get(ctx context.Context, id int) (models.Employee, error)
	List(ctx context.Context) ([]models.Employee, error)
	Delete(ctx context.Context, id int) error
	Login(ctx context.Context, username, password string) (service.LoginResult, error)
}

// Handler wires employee endpoints to the employee service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an employee handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterLogin mounts the unauthenticated login endpoint.
func (h *Handler) RegisterLogin(r chi.Router) {
	r.Post("/employees/login", h.HandleLogin)
}

// Register mounts the employee management endpoints. Mount behind the auth
// middleware.
func (h *Handler) Register(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Get("/{id}", h.HandleGet)
		r.Put("/{id}", h.HandleUpdate)
		r.Delete("/{id}", h.HandleDelete)
	})
}

type createRequest struct {
	Username string      `json:"username"`
	Name     string      `json:"name"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

type updateRequest struct {
	Name     string        `json:"name"`
	Password string        `json:"password"`
	Role     models.Role   `json:"role"`
	Status   models.Status `json:"status"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.Username == "" || req.Password == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "username and password are required"))
		return
	}

	result, err := h.service.Login(ctx, req.Username, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "login rejected",
			"request_id", requestcontext.RequestID(ctx),
			"username", req.Username,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	employees, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if employees == nil {
		employees = []models.Employee{}
	}
	httputil.WriteJSON(w, http.StatusOK, employees)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	created, err := h.service.Create(ctx, service.CreateInput{
		Username: req.Username,
		Name:     req.Name,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "employee created",
		"request_id", requestcontext.RequestID(ctx),
		"username", created.Username,
		"created_by", requestcontext.Employee(ctx),
	)
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	e, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	updated, err := h.service.Update(r.Context(), id, service.UpdateInput{
		Name:     req.Name,
		Password: req.Password,
		Role:     req.Role,
		Status:   req.Status,
	})
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
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "employee id must be a positive integer"))
		return 0, false
	}
	return id, true
}
