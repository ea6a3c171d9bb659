package ingest

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	customerservice "olivecrm/internal/customer/service"
	customerstore "olivecrm/internal/customer/store"
	ordermodels "olivecrm/internal/order/models"
	orderstore "olivecrm/internal/order/store"
	productservice "olivecrm/internal/product/service"
	productstore "olivecrm/internal/product/store"
	dErrors "olivecrm/pkg/domain-errors"
)

const csvHeader = "id,saleDate,saleType,digital,customerId,zipCode,shippingMethod,productName,productVariant,quantity,price,productPrice\n"

func newTestIngest(t *testing.T) (*Service, *customerstore.InMemory, *productstore.InMemory, *orderstore.InMemory) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	customers := customerstore.NewInMemory()
	products := productstore.NewInMemory()
	orders := orderstore.NewInMemory()
	svc := New(
		customerservice.New(customers, logger),
		productservice.New(products, logger),
		orders,
		logger,
	)
	return svc, customers, products, orders
}

func TestIngestUpsertsAndInserts(t *testing.T) {
	svc, customers, products, orders := newTestIngest(t)
	ctx := context.Background()

	data := csvHeader +
		"1,15/03/2024,Direct - B2B,Online - Website,7,4053,Standard Delivery,Olive Oil,500ml,2,12.50,12.50\n" +
		"2,2024-03-16,Direct - B2C,Online - Website,7,4055,Express,Olive Oil,500ml,1,13.00,13.00\n" +
		"3,03/17/2024,Direct - B2C,Phone,8,1010,Standard Delivery,Tapenade,Jar,3,6.00,6.00\n"

	summary, err := svc.Ingest(ctx, strings.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 3, summary.RowsIngested)

	// Customer 7 appears twice; the later zipcode wins.
	c, err := customers.FindByID(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, "4055", c.Zipcode)

	// One product per (name, variant) pair, price refreshed to the last seen.
	all, err := products.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	oil, err := products.FindByNameVariant(ctx, "Olive Oil", "500ml")
	require.NoError(t, err)
	require.InDelta(t, 13.00, oil.IndividualPrice, 1e-9)

	got, _, err := orders.FindFiltered(ctx, ordermodels.Filter{}, ordermodels.Unpaged())
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.InDelta(t, 25.0, got[0].TotalCost, 1e-9) // 2 x 12.50
	require.Equal(t, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), got[0].SalesDate)
	require.Equal(t, oil.ID, got[0].ProductID)
	require.Equal(t, "Direct - B2B", got[0].SalesType)
	require.Equal(t, "Online - Website", got[0].OrderMethod)
}

func TestIngestRejectsBadRows(t *testing.T) {
	svc, _, _, _ := newTestIngest(t)
	ctx := context.Background()

	tests := []struct {
		name string
		row  string
		want string
	}{
		{"bad date", "1,not-a-date,t,m,7,4053,s,Oil,,1,1.00,1.00\n", "row 2"},
		{"bad customer id", "1,15/03/2024,t,m,zero,4053,s,Oil,,1,1.00,1.00\n", "row 2"},
		{"bad quantity", "1,15/03/2024,t,m,7,4053,s,Oil,,0,1.00,1.00\n", "row 2"},
		{"negative price", "1,15/03/2024,t,m,7,4053,s,Oil,,1,-1.00,1.00\n", "row 2"},
		{"missing product name", "1,15/03/2024,t,m,7,4053,s,,,1,1.00,1.00\n", "row 2"},
		{"short row", "1,15/03/2024,t\n", "row 2"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Ingest(ctx, strings.NewReader(csvHeader+tc.row))
			require.Error(t, err)
			require.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
			require.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestIngestEmptyFile(t *testing.T) {
	svc, _, _, _ := newTestIngest(t)

	_, err := svc.Ingest(context.Background(), strings.NewReader(csvHeader))
	require.Error(t, err)
	require.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestIngestBadRowNamesLaterRows(t *testing.T) {
	svc, _, _, _ := newTestIngest(t)

	data := csvHeader +
		"1,15/03/2024,t,m,7,4053,s,Oil,,1,1.00,1.00\n" +
		"2,not-a-date,t,m,7,4053,s,Oil,,1,1.00,1.00\n"

	_, err := svc.Ingest(context.Background(), strings.NewReader(data))
	require.Error(t, err)
	require.Contains(t, err.Error(), "row 3")
}
