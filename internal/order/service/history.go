package service

import (
	"context"
	"errors"
	"sort"

	"olivecrm/internal/order/models"
	dErrors "olivecrm/pkg/domain-errors"
	"olivecrm/pkg/platform/sentinel"
)

const topProductsLimit = 3

// TopProducts returns the customer's three most-purchased products by summed
// quantity, descending. Ties break by ascending product id so the ranking is
// deterministic. A customer with no orders gets an empty list.
func (s *Service) TopProducts(ctx context.Context, customerID int) ([]models.TopProduct, error) {
	orders, err := s.store.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load customer orders")
	}

	quantities := map[int]int{}
	for _, o := range orders {
		quantities[o.ProductID] += o.Quantity
	}

	productIDs := make([]int, 0, len(quantities))
	for id := range quantities {
		productIDs = append(productIDs, id)
	}
	sort.Slice(productIDs, func(i, j int) bool {
		if quantities[productIDs[i]] != quantities[productIDs[j]] {
			return quantities[productIDs[i]] > quantities[productIDs[j]]
		}
		return productIDs[i] < productIDs[j]
	})

	if len(productIDs) > topProductsLimit {
		productIDs = productIDs[:topProductsLimit]
	}

	top := make([]models.TopProduct, 0, len(productIDs))
	for _, id := range productIDs {
		entry := models.TopProduct{ProductID: id, TotalQuantity: quantities[id]}
		info, err := s.products.ProductInfo(ctx, id)
		switch {
		case err == nil:
			entry.ProductName = info.Name
			entry.UnitPrice = info.UnitPrice
		case errors.Is(err, sentinel.ErrNotFound):
			// Order references a product that was since removed; keep the id.
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve product")
		}
		top = append(top, entry)
	}
	return top, nil
}

// PurchaseHistory returns the per-order (quantity, sales date) series for a
// customer, one entry per order in retrieval order. Both sequences are always
// the same length; a customer with no orders gets two empty sequences.
func (s *Service) PurchaseHistory(ctx context.Context, customerID int) (models.PurchaseHistory, error) {
	orders, err := s.store.FindByCustomer(ctx, customerID)
	if err != nil {
		return models.PurchaseHistory{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load customer orders")
	}

	history := models.PurchaseHistory{
		PurchaseCounts: make([]int, 0, len(orders)),
		PurchaseDates:  make([]string, 0, len(orders)),
	}
	for _, o := range orders {
		history.PurchaseCounts = append(history.PurchaseCounts, o.Quantity)
		history.PurchaseDates = append(history.PurchaseDates, o.SalesDate.Format("2006-01-02"))
	}
	return history, nil
}
