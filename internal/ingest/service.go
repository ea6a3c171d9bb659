// Package ingest loads historical sales data from uploaded CSV files,
// upserting the customers and products each row references before inserting
// the order itself.
package ingest

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	customermodels "olivecrm/internal/customer/models"
	ordermodels "olivecrm/internal/order/models"
	productmodels "olivecrm/internal/product/models"
	dErrors "olivecrm/pkg/domain-errors"
)

// Sales export column layout. Column 0 is the exporting system's row id and
// is ignored.
const (
	colSaleDate = iota + 1
	colSaleType
	colOrderMethod
	colCustomerID
	colZipcode
	colShippingMethod
	colProductName
	colProductVariant
	colQuantity
	colUnitPrice
	colProductPrice
)

const minColumns = colProductPrice + 1

// Date layouts seen in the wild exports, tried in order.
var dateLayouts = []string{"02/01/2006", "01/02/2006", "2006-01-02"}

// CustomerUpserter saves (creates or refreshes) a customer.
type CustomerUpserter interface {
	Save(ctx context.Context, c customermodels.Customer) (customermodels.Customer, error)
}

// ProductUpserter resolves a product by natural key, creating it if needed.
type ProductUpserter interface {
	FindOrCreate(ctx context.Context, name, variant string, price float64) (productmodels.Product, error)
}

// OrderWriter inserts an order row. The order store satisfies this; the rows
// reference customers and products this service upserted moments before, so
// the validating creation path is not needed here.
type OrderWriter interface {
	Create(ctx context.Context, o *ordermodels.Order) error
}

// Service ingests CSV sales exports.
type Service struct {
	customers CustomerUpserter
	products  ProductUpserter
	orders    OrderWriter
	logger    *slog.Logger
}

// New constructs the ingestion service.
func New(customers CustomerUpserter, products ProductUpserter, orders OrderWriter, logger *slog.Logger) *Service {
	return &Service{
		customers: customers,
		products:  products,
		orders:    orders,
		logger:    logger,
	}
}

// Summary reports what one upload ingested.
type Summary struct {
	RowsIngested int `json:"rowsIngested"`
}

// Ingest reads a CSV sales export and loads every data row. The first row is
// a header and is skipped. Any bad row aborts the upload with an error naming
// the row, so an upload is all-or-nothing from the caller's point of view
// only when the backing store is transactional; partially loaded uploads can
// be re-run because customer and product writes are upserts.
func (s *Service) Ingest(ctx context.Context, r io.Reader) (Summary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return Summary{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "malformed CSV")
	}
	if len(rows) <= 1 {
		return Summary{}, dErrors.New(dErrors.CodeBadRequest, "CSV contains no data rows")
	}

	ingested := 0
	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based, counting the header
		if err := s.ingestRow(ctx, row, rowNum); err != nil {
			return Summary{}, err
		}
		ingested++
	}

	s.logger.InfoContext(ctx, "csv ingested", "rows", ingested)
	return Summary{RowsIngested: ingested}, nil
}

func (s *Service) ingestRow(ctx context.Context, row []string, rowNum int) error {
	if len(row) < minColumns {
		return dErrors.Newf(dErrors.CodeBadRequest, "row %d: expected at least %d columns, got %d", rowNum, minColumns, len(row))
	}

	saleDate, err := parseDate(row[colSaleDate])
	if err != nil {
		return dErrors.Newf(dErrors.CodeBadRequest, "row %d: unparseable sale date %q", rowNum, row[colSaleDate])
	}
	customerID, err := strconv.Atoi(strings.TrimSpace(row[colCustomerID]))
	if err != nil || customerID <= 0 {
		return dErrors.Newf(dErrors.CodeBadRequest, "row %d: invalid customer id %q", rowNum, row[colCustomerID])
	}
	quantity, err := strconv.Atoi(strings.TrimSpace(row[colQuantity]))
	if err != nil || quantity <= 0 {
		return dErrors.Newf(dErrors.CodeBadRequest, "row %d: invalid quantity %q", rowNum, row[colQuantity])
	}
	unitPrice, err := parsePrice(row[colUnitPrice])
	if err != nil {
		return dErrors.Newf(dErrors.CodeBadRequest, "row %d: invalid price %q", rowNum, row[colUnitPrice])
	}
	productPrice, err := parsePrice(row[colProductPrice])
	if err != nil {
		return dErrors.Newf(dErrors.CodeBadRequest, "row %d: invalid product price %q", rowNum, row[colProductPrice])
	}
	productName := strings.TrimSpace(row[colProductName])
	if productName == "" {
		return dErrors.Newf(dErrors.CodeBadRequest, "row %d: missing product name", rowNum)
	}

	if _, err := s.customers.Save(ctx, customermodels.Customer{
		ID:      customerID,
		Zipcode: strings.TrimSpace(row[colZipcode]),
	}); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to upsert customer")
	}

	product, err := s.products.FindOrCreate(ctx, productName, strings.TrimSpace(row[colProductVariant]), productPrice)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to upsert product")
	}

	order := &ordermodels.Order{
		CustomerID:     customerID,
		ProductID:      product.ID,
		Quantity:       quantity,
		TotalCost:      unitPrice * float64(quantity),
		OrderMethod:    strings.TrimSpace(row[colOrderMethod]),
		SalesDate:      saleDate,
		SalesType:      strings.TrimSpace(row[colSaleType]),
		ShippingMethod: strings.TrimSpace(row[colShippingMethod]),
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to insert order")
	}
	return nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func parsePrice(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, strconv.ErrRange
	}
	return v, nil
}
