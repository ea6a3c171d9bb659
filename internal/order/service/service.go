// Package service holds the order domain logic: CRUD and filtered retrieval,
// the customer segmentation engine, the sales-metrics aggregator and the
// purchase-history summarizer.
package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	ordermetrics "olivecrm/internal/order/metrics"
	"olivecrm/internal/order/models"
	"olivecrm/internal/order/store"
	dErrors "olivecrm/pkg/domain-errors"
	"olivecrm/pkg/platform/sentinel"
	"olivecrm/pkg/requestcontext"
)

// Store is the order persistence the service depends on. The analytics
// methods return raw groupings; every threshold, exclusion and percentile cut
// is applied here so both store implementations share one algorithm.
type Store interface {
	Create(ctx context.Context, o *models.Order) error
	FindFiltered(ctx context.Context, f models.Filter, page models.Page) ([]models.Order, int, error)
	FindByCustomer(ctx context.Context, customerID int) ([]models.Order, error)

	MostRecentSalesDate(ctx context.Context) (time.Time, bool, error)
	CustomersWithOrderBetween(ctx context.Context, start, end time.Time) ([]int, error)
	CustomersWithAnyOrderUpTo(ctx context.Context, date time.Time) ([]int, error)
	OrderCountsByCustomerMonth(ctx context.Context) (map[int]map[string]int, error)
	OrderCountsByCustomerQuarter(ctx context.Context) (map[int]map[string]int, error)
	LifetimeOrderCounts(ctx context.Context) (map[int]int, error)
	LifetimeSpendByCustomer(ctx context.Context) (map[int]float64, error)
}

// ProductInfo supplies display data for a product reference.
type ProductInfo struct {
	ID        int
	Name      string
	UnitPrice float64
}

// ProductCatalog resolves product references for order creation and the
// top-products ranking.
type ProductCatalog interface {
	ProductInfo(ctx context.Context, productID int) (ProductInfo, error)
}

// CustomerDirectory answers existence checks for customer references.
type CustomerDirectory interface {
	CustomerExists(ctx context.Context, customerID int) (bool, error)
}

// Service orchestrates order operations. It holds no mutable state; every
// call recomputes from the store, so concurrent callers are safe.
type Service struct {
	store     Store
	products  ProductCatalog
	customers CustomerDirectory
	logger    *slog.Logger
	metrics   *ordermetrics.Metrics
}

// New constructs the order service. metrics may be nil (tests).
func New(st Store, products ProductCatalog, customers CustomerDirectory, logger *slog.Logger, m *ordermetrics.Metrics) *Service {
	return &Service{
		store:     st,
		products:  products,
		customers: customers,
		logger:    logger,
		metrics:   m,
	}
}

// CreateOrderInput carries a manual order creation request.
type CreateOrderInput struct {
	CustomerID int
	ProductID  int
	Quantity   int
	TotalCost  float64
	SalesType  string
	SalesDate  *time.Time
}

// CreateOrder validates the referenced customer and product, applies the
// manual-order defaults and persists the order.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	if in.Quantity <= 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "quantity must be positive")
	}
	if in.TotalCost < 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "total cost must not be negative")
	}

	exists, err := s.customers.CustomerExists(ctx, in.CustomerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve customer")
	}
	if !exists {
		return nil, dErrors.New(dErrors.CodeNotFound, "customer not found")
	}

	if _, err := s.products.ProductInfo(ctx, in.ProductID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "product not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve product")
	}

	salesDate := requestcontext.Now(ctx)
	if in.SalesDate != nil {
		salesDate = *in.SalesDate
	}

	order := &models.Order{
		CustomerID:     in.CustomerID,
		ProductID:      in.ProductID,
		Quantity:       in.Quantity,
		TotalCost:      in.TotalCost,
		SalesType:      in.SalesType,
		SalesDate:      store.DateOnly(salesDate),
		OrderMethod:    "Online - Website",
		ShippingMethod: "Standard Delivery",
	}
	if err := s.store.Create(ctx, order); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create order")
	}

	if s.metrics != nil {
		s.metrics.OrdersCreated.Inc()
	}
	return order, nil
}

// ListOrders returns one page of all orders.
func (s *Service) ListOrders(ctx context.Context, page models.Page) ([]models.Order, int, error) {
	return s.ListFiltered(ctx, models.Filter{}, page)
}

// ListFiltered returns one page of orders matching the filter, plus the total
// match count for pagination.
func (s *Service) ListFiltered(ctx context.Context, f models.Filter, page models.Page) ([]models.Order, int, error) {
	orders, total, err := s.store.FindFiltered(ctx, f, page)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list orders")
	}
	return orders, total, nil
}

// OrdersByCustomer returns every order for one customer, in retrieval order.
func (s *Service) OrdersByCustomer(ctx context.Context, customerID int) ([]models.Order, error) {
	orders, err := s.store.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load customer orders")
	}
	return orders, nil
}

// ExportCSV streams every order matching the filter as CSV. It goes through
// the same filtered-retrieval path as listing, so an export always matches
// what the listing showed for the same filter.
func (s *Service) ExportCSV(ctx context.Context, f models.Filter, w io.Writer) error {
	orders, _, err := s.store.FindFiltered(ctx, f, models.Unpaged())
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to export orders")
	}

	cw := csv.NewWriter(w)
	header := []string{"Order ID", "Customer ID", "Product ID", "Quantity", "Total Cost",
		"Order Method", "Sales Date", "Sales Type", "Shipping Method"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, o := range orders {
		record := []string{
			fmt.Sprintf("%d", o.ID),
			fmt.Sprintf("%d", o.CustomerID),
			fmt.Sprintf("%d", o.ProductID),
			fmt.Sprintf("%d", o.Quantity),
			fmt.Sprintf("%.2f", o.TotalCost),
			o.OrderMethod,
			o.SalesDate.Format("2006-01-02"),
			o.SalesType,
			o.ShippingMethod,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
