package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"olivecrm/internal/order/models"
	"olivecrm/internal/order/service"
	"olivecrm/internal/order/store"
	"olivecrm/pkg/platform/sentinel"
)

type catalogStub struct {
	products map[int]service.ProductInfo
}

func (c *catalogStub) ProductInfo(ctx context.Context, id int) (service.ProductInfo, error) {
	if p, ok := c.products[id]; ok {
		return p, nil
	}
	return service.ProductInfo{}, sentinel.ErrNotFound
}

type directoryStub struct {
	customers map[int]bool
}

func (d *directoryStub) CustomerExists(ctx context.Context, id int) (bool, error) {
	return d.customers[id], nil
}

// HandlerSuite exercises the order endpoints against a real service and the
// in-memory store.
type HandlerSuite struct {
	suite.Suite
	router http.Handler
	store  *store.InMemory
}

func (s *HandlerSuite) SetupTest() {
	s.store = store.NewInMemory()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	catalog := &catalogStub{products: map[int]service.ProductInfo{
		1: {ID: 1, Name: "Olive Oil 500ml", UnitPrice: 12.5},
	}}
	directory := &directoryStub{customers: map[int]bool{1: true, 2: true}}

	svc := service.New(s.store, catalog, directory, logger, nil)
	h := New(svc, logger)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		h.Register(r)
	})
	s.router = r
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) seed(customerID, productID, quantity int, cost float64, salesDate time.Time) {
	err := s.store.Create(context.Background(), &models.Order{
		CustomerID: customerID,
		ProductID:  productID,
		Quantity:   quantity,
		TotalCost:  cost,
		SalesType:  "Direct - B2B",
		SalesDate:  salesDate,
	})
	s.Require().NoError(err)
}

func (s *HandlerSuite) do(method, target string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) TestCreate_Valid() {
	rec := s.do(http.MethodPost, "/api/orders/manual",
		`{"customerId":1,"productId":1,"quantity":2,"totalCost":25,"salesType":"Direct - B2B","salesDate":"2024-05-01"}`)

	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var order models.Order
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&order))
	s.NotZero(order.ID)
	s.Equal("Online - Website", order.OrderMethod)
	s.Equal("Standard Delivery", order.ShippingMethod)
	s.Equal("2024-05-01T00:00:00Z", order.SalesDate.Format(time.RFC3339))
}

func (s *HandlerSuite) TestCreate_InvalidJSON() {
	rec := s.do(http.MethodPost, "/api/orders/manual", `not json`)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestCreate_UnknownCustomer() {
	rec := s.do(http.MethodPost, "/api/orders/manual",
		`{"customerId":99,"productId":1,"quantity":1,"totalCost":10}`)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlerSuite) TestCreate_BadDate() {
	rec := s.do(http.MethodPost, "/api/orders/manual",
		`{"customerId":1,"productId":1,"quantity":1,"totalCost":10,"salesDate":"01/05/2024"}`)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestList_FilterAndPagination() {
	s.seed(1, 1, 1, 10, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC))
	s.seed(1, 2, 1, 20, time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC))
	s.seed(2, 1, 1, 30, time.Date(2024, time.May, 3, 0, 0, 0, 0, time.UTC))

	rec := s.do(http.MethodGet, "/api/orders/filter?customerId=1", "")
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp listResponse
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
	s.Equal(2, resp.TotalCount)
	s.Len(resp.Orders, 2)

	rec = s.do(http.MethodGet, "/api/orders/filter?page=0&size=2", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
	s.Equal(3, resp.TotalCount)
	s.Len(resp.Orders, 2)
}

func (s *HandlerSuite) TestList_BadParams() {
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/api/orders/filter?customerId=abc", "").Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/api/orders/filter?date=05-2024", "").Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/api/orders/filter?startDate=2024-05-01", "").Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/api/orders/filter?size=-1", "").Code)
}

func (s *HandlerSuite) TestList_SingleDateWinsOverRange() {
	s.seed(1, 1, 1, 10, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC))
	s.seed(1, 1, 1, 20, time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC))

	rec := s.do(http.MethodGet, "/api/orders/filter?date=2024-05-01&startDate=2024-05-01&endDate=2024-05-02", "")
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp listResponse
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
	s.Equal(1, resp.TotalCount)
}

func (s *HandlerSuite) TestSalesMetrics() {
	s.seed(1, 1, 1, 10, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC))
	s.seed(1, 1, 1, 20, time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC))
	s.seed(2, 1, 1, 30, time.Date(2024, time.May, 3, 0, 0, 0, 0, time.UTC))

	rec := s.do(http.MethodGet, "/api/orders/metrics-summary", "")
	s.Require().Equal(http.StatusOK, rec.Code)

	var m models.SalesMetrics
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&m))
	s.Equal(3, m.TotalSales)
	s.InDelta(60, m.TotalAmount, 1e-9)
	s.InDelta(20, m.AverageOrderValue, 1e-9)
}

func (s *HandlerSuite) TestSegments() {
	// One active customer relative to the latest sales date, one dormant.
	s.seed(1, 1, 1, 10, time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC))
	s.seed(2, 1, 1, 10, time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC))

	for _, target := range []string{
		"/api/orders/segments/recency",
		"/api/orders/segments/frequency",
		"/api/orders/segments/monetary",
	} {
		rec := s.do(http.MethodGet, target, "")
		s.Require().Equal(http.StatusOK, rec.Code, target)

		var segments []models.CustomerSegment
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&segments))
		s.Len(segments, 3, target)
	}
}

func (s *HandlerSuite) TestByCustomer() {
	s.seed(1, 1, 2, 25, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC))

	rec := s.do(http.MethodGet, "/api/orders/customer/1", "")
	s.Require().Equal(http.StatusOK, rec.Code)

	var orders []models.Order
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&orders))
	s.Len(orders, 1)

	rec = s.do(http.MethodGet, "/api/orders/customer/2", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&orders))
	s.Empty(orders)

	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/api/orders/customer/abc", "").Code)
}

func (s *HandlerSuite) TestTopProducts() {
	s.seed(1, 1, 2, 25, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC))
	s.seed(1, 2, 5, 30, time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC))

	rec := s.do(http.MethodGet, "/api/orders/customer/1/top-products", "")
	s.Require().Equal(http.StatusOK, rec.Code)

	var top []models.TopProduct
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&top))
	s.Require().Len(top, 2)
	s.Equal(2, top[0].ProductID)
	s.Equal(5, top[0].TotalQuantity)
	s.Equal("Olive Oil 500ml", top[1].ProductName)
}

func (s *HandlerSuite) TestPurchaseHistory() {
	s.seed(1, 1, 2, 25, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC))
	s.seed(1, 1, 3, 40, time.Date(2024, time.May, 8, 0, 0, 0, 0, time.UTC))

	rec := s.do(http.MethodGet, "/api/orders/customer/1/purchase-history", "")
	s.Require().Equal(http.StatusOK, rec.Code)

	var history models.PurchaseHistory
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&history))
	s.Equal([]int{2, 3}, history.PurchaseCounts)
	s.Equal([]string{"2024-05-01", "2024-05-08"}, history.PurchaseDates)
}

func (s *HandlerSuite) TestExportCSV() {
	s.seed(1, 1, 2, 25, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC))
	s.seed(2, 1, 1, 10, time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC))

	rec := s.do(http.MethodGet, "/api/orders/export/csv?customerId=1", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("text/csv", rec.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	s.Require().Len(lines, 2) // header plus one matching row
	s.Contains(lines[0], "Order ID")
	s.Contains(lines[1], "2024-05-01")
}
