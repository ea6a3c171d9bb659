package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"olivecrm/internal/order/models"
)

func TestSalesMetricsEmptySet(t *testing.T) {
	svc, _ := newTestService(t)

	m, err := svc.SalesMetrics(context.Background(), models.Filter{})
	require.NoError(t, err)
	require.Zero(t, m.TotalSales)
	require.Zero(t, m.TotalAmount)
	require.Zero(t, m.AverageOrderValue)
}

func TestSalesMetricsAggregation(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedOrder(t, st, 1, d(2024, time.May, 1), 10)
	seedOrder(t, st, 2, d(2024, time.May, 2), 20)
	seedOrder(t, st, 3, d(2024, time.May, 3), 30)

	m, err := svc.SalesMetrics(ctx, models.Filter{})
	require.NoError(t, err)
	require.Equal(t, 3, m.TotalSales)
	require.InDelta(t, 60, m.TotalAmount, 1e-9)
	require.InDelta(t, 20, m.AverageOrderValue, 1e-9)
}

func TestSalesMetricsMatchesListingForSameFilter(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedOrder(t, st, 1, d(2024, time.May, 1), 10)
	seedOrder(t, st, 1, d(2024, time.May, 8), 25)
	seedOrder(t, st, 2, d(2024, time.May, 8), 40)

	customerID := 1
	f := models.Filter{CustomerID: &customerID}

	orders, total, err := svc.ListFiltered(ctx, f, models.Unpaged())
	require.NoError(t, err)

	m, err := svc.SalesMetrics(ctx, f)
	require.NoError(t, err)
	require.Equal(t, total, m.TotalSales)

	var sum float64
	for _, o := range orders {
		sum += o.TotalCost
	}
	require.InDelta(t, sum, m.TotalAmount, 1e-9)
}

func TestSalesMetricsSingleDateWinsOverRange(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedOrder(t, st, 1, d(2024, time.May, 1), 10)
	seedOrder(t, st, 1, d(2024, time.May, 2), 20)
	seedOrder(t, st, 1, d(2024, time.May, 3), 30)

	single := d(2024, time.May, 2)
	start := d(2024, time.May, 1)
	end := d(2024, time.May, 3)

	// The range would match all three orders; the single date narrows to one.
	m, err := svc.SalesMetrics(ctx, models.Filter{
		SingleDate: &single,
		StartDate:  &start,
		EndDate:    &end,
	})
	require.NoError(t, err)
	require.Equal(t, 1, m.TotalSales)
	require.InDelta(t, 20, m.TotalAmount, 1e-9)
}
