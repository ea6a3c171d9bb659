// Package handler exposes the order API: manual creation, filtered listing
// and export, per-customer summaries, sales metrics and the customer
// segmentation endpoints.
package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"olivecrm/internal/order/models"
	"olivecrm/internal/order/service"
	dErrors "olivecrm/pkg/domain-errors"
	"olivecrm/pkg/platform/httputil"
	"olivecrm/pkg/requestcontext"
)

// Service defines the order operations the handler exposes.
type Service interface {
	CreateOrder(ctx context.Context, in service.CreateOrderInput) (*models.Order, error)
	ListFiltered(ctx context.Context, f models.Filter, page models.Page) ([]models.Order, int, error)
	OrdersByCustomer(ctx context.Context, customerID int) ([]models.Order, error)
	ExportCSV(ctx context.Context, f models.Filter, w io.Writer) error
	SalesMetrics(ctx context.Context, f models.Filter) (models.SalesMetrics, error)
	TopProducts(ctx context.Context, customerID int) ([]models.TopProduct, error)
	PurchaseHistory(ctx context.Context, customerID int) (models.PurchaseHistory, error)
	RecencySegments(ctx context.Context) ([]models.CustomerSegment, error)
	FrequencySegments(ctx context.Context) ([]models.CustomerSegment, error)
	MonetarySegments(ctx context.Context) ([]models.CustomerSegment, error)
}

// Handler wires order endpoints to the order service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an order handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts order endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/manual", h.HandleCreate)
		r.Get("/", h.HandleList)
		r.Get("/filter", h.HandleList)
		r.Get("/export/csv", h.HandleExportCSV)
		r.Get("/metrics-summary", h.HandleSalesMetrics)
		r.Get("/segments/recency", h.HandleSegments(Service.RecencySegments))
		r.Get("/segments/frequency", h.HandleSegments(Service.FrequencySegments))
		r.Get("/segments/monetary", h.HandleSegments(Service.MonetarySegments))
		r.Get("/customer/{customerID}", h.HandleByCustomer)
		r.Get("/customer/{customerID}/top-products", h.HandleTopProducts)
		r.Get("/customer/{customerID}/purchase-history", h.HandlePurchaseHistory)
	})
}

type createOrderRequest struct {
	CustomerID int     `json:"customerId"`
	ProductID  int     `json:"productId"`
	Quantity   int     `json:"quantity"`
	TotalCost  float64 `json:"totalCost"`
	SalesType  string  `json:"salesType"`
	SalesDate  string  `json:"salesDate"`
}

type listResponse struct {
	Orders     []models.Order `json:"orders"`
	TotalCount int            `json:"totalCount"`
}

// HandleCreate handles POST /orders/manual requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	in := service.CreateOrderInput{
		CustomerID: req.CustomerID,
		ProductID:  req.ProductID,
		Quantity:   req.Quantity,
		TotalCost:  req.TotalCost,
		SalesType:  req.SalesType,
	}
	if req.SalesDate != "" {
		date, err := time.Parse("2006-01-02", req.SalesDate)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "salesDate must be YYYY-MM-DD"))
			return
		}
		in.SalesDate = &date
	}

	order, err := h.service.CreateOrder(ctx, in)
	if err != nil {
		h.logger.ErrorContext(ctx, "order creation failed",
			"request_id", requestcontext.RequestID(ctx),
			"customer_id", req.CustomerID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "order created",
		"request_id", requestcontext.RequestID(ctx),
		"order_id", order.ID,
		"customer_id", order.CustomerID,
	)
	httputil.WriteJSON(w, http.StatusCreated, order)
}

// HandleList handles GET /orders and GET /orders/filter requests. Both accept
// the same filter query parameters; the unfiltered listing is just an empty
// filter.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	f, err := parseFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	page, err := parsePage(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	orders, total, err := h.service.ListFiltered(ctx, f, page)
	if err != nil {
		h.logger.ErrorContext(ctx, "order listing failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Orders: orders, TotalCount: total})
}

// HandleExportCSV handles GET /orders/export/csv requests. The export accepts
// the same filter parameters as listing and streams the matching rows.
func (h *Handler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	f, err := parseFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="orders.csv"`)
	if err := h.service.ExportCSV(ctx, f, w); err != nil {
		// Headers may already be written; log and give up on the body.
		h.logger.ErrorContext(ctx, "order export failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}

// HandleSalesMetrics handles GET /orders/metrics-summary requests.
func (h *Handler) HandleSalesMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	f, err := parseFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	metrics, err := h.service.SalesMetrics(ctx, f)
	if err != nil {
		h.logger.ErrorContext(ctx, "sales metrics failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, metrics)
}

// HandleSegments adapts one segmentation axis into a handler.
func (h *Handler) HandleSegments(compute func(Service, context.Context) ([]models.CustomerSegment, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		segments, err := compute(h.service, ctx)
		if err != nil {
			h.logger.ErrorContext(ctx, "segmentation failed",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, segments)
	}
}

// HandleByCustomer handles GET /orders/customer/{customerID} requests.
func (h *Handler) HandleByCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	customerID, ok := customerIDParam(w, r)
	if !ok {
		return
	}

	orders, err := h.service.OrdersByCustomer(ctx, customerID)
	if err != nil {
		h.logger.ErrorContext(ctx, "customer order lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"customer_id", customerID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	httputil.WriteJSON(w, http.StatusOK, orders)
}

// HandleTopProducts handles GET /orders/customer/{customerID}/top-products.
func (h *Handler) HandleTopProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	customerID, ok := customerIDParam(w, r)
	if !ok {
		return
	}

	top, err := h.service.TopProducts(ctx, customerID)
	if err != nil {
		h.logger.ErrorContext(ctx, "top products failed",
			"request_id", requestcontext.RequestID(ctx),
			"customer_id", customerID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if top == nil {
		top = []models.TopProduct{}
	}
	httputil.WriteJSON(w, http.StatusOK, top)
}

// HandlePurchaseHistory handles GET /orders/customer/{customerID}/purchase-history.
func (h *Handler) HandlePurchaseHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	customerID, ok := customerIDParam(w, r)
	if !ok {
		return
	}

	history, err := h.service.PurchaseHistory(ctx, customerID)
	if err != nil {
		h.logger.ErrorContext(ctx, "purchase history failed",
			"request_id", requestcontext.RequestID(ctx),
			"customer_id", customerID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, history)
}

func customerIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "customerID"))
	if err != nil || id <= 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "customer id must be a positive integer"))
		return 0, false
	}
	return id, true
}

// parseFilter reads the shared filter query parameters: customerId, salesType,
// productIds (comma-separated), date, startDate, endDate. Dates are
// YYYY-MM-DD.
func parseFilter(r *http.Request) (models.Filter, error) {
	q := r.URL.Query()
	var f models.Filter

	if v := q.Get("customerId"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return f, dErrors.New(dErrors.CodeBadRequest, "customerId must be an integer")
		}
		f.CustomerID = &id
	}
	if v := q.Get("salesType"); v != "" {
		f.SalesType = &v
	}
	if v := q.Get("productIds"); v != "" {
		for _, part := range strings.Split(v, ",") {
			id, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return f, dErrors.New(dErrors.CodeBadRequest, "productIds must be a comma-separated list of integers")
			}
			f.ProductIDs = append(f.ProductIDs, id)
		}
	}

	parseDate := func(name string) (*time.Time, error) {
		v := q.Get(name)
		if v == "" {
			return nil, nil
		}
		date, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, dErrors.Newf(dErrors.CodeBadRequest, "%s must be YYYY-MM-DD", name)
		}
		return &date, nil
	}

	var err error
	if f.SingleDate, err = parseDate("date"); err != nil {
		return f, err
	}
	if f.StartDate, err = parseDate("startDate"); err != nil {
		return f, err
	}
	if f.EndDate, err = parseDate("endDate"); err != nil {
		return f, err
	}
	if (f.StartDate == nil) != (f.EndDate == nil) {
		return f, dErrors.New(dErrors.CodeBadRequest, "startDate and endDate must be supplied together")
	}
	return f, nil
}

// parsePage reads page and size. Absent size means unpaged.
func parsePage(r *http.Request) (models.Page, error) {
	q := r.URL.Query()
	var page models.Page

	if v := q.Get("size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size <= 0 {
			return page, dErrors.New(dErrors.CodeBadRequest, "size must be a positive integer")
		}
		page.Size = size
	}
	if v := q.Get("page"); v != "" {
		number, err := strconv.Atoi(v)
		if err != nil || number < 0 {
			return page, dErrors.New(dErrors.CodeBadRequest, "page must be a non-negative integer")
		}
		page.Number = number
	}
	return page, nil
}
