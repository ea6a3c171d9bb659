package service

import (
	"context"

	"olivecrm/internal/order/models"
	dErrors "olivecrm/pkg/domain-errors"
)

// SalesMetrics aggregates count, total amount and average order value over
// the filtered order set. It shares the filtered-retrieval path with listing
// and export, so metrics can never diverge from the rows a listing returns
// for the same filter. An empty result is a zero value, not an error.
func (s *Service) SalesMetrics(ctx context.Context, f models.Filter) (models.SalesMetrics, error) {
	orders, _, err := s.store.FindFiltered(ctx, f, models.Unpaged())
	if err != nil {
		return models.SalesMetrics{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to aggregate sales metrics")
	}

	var total float64
	for _, o := range orders {
		total += o.TotalCost
	}

	m := models.SalesMetrics{
		TotalSales:  len(orders),
		TotalAmount: total,
	}
	if m.TotalSales > 0 {
		m.AverageOrderValue = total / float64(m.TotalSales)
	}
	return m, nil
}
