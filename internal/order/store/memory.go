// Package store provides order persistence: an in-memory implementation used
// by unit tests and driver-free deployments, and a PostgreSQL implementation.
// Both expose the raw retrieval primitives the analytics engine groups over;
// thresholding and exclusion logic stays out of the stores.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"olivecrm/internal/order/models"
)

// InMemory keeps orders in a slice guarded by a mutex. Retrieval order is
// insertion order, which keeps purchase-history sequences stable.
type InMemory struct {
	mu     sync.RWMutex
	orders []models.Order
	nextID int
}

// NewInMemory constructs an empty in-memory order store.
func NewInMemory() *InMemory {
	return &InMemory{nextID: 1}
}

func (s *InMemory) Create(ctx context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o.ID = s.nextID
	s.nextID++
	o.SalesDate = DateOnly(o.SalesDate)
	s.orders = append(s.orders, *o)
	return nil
}

func (s *InMemory) FindFiltered(ctx context.Context, f models.Filter, page models.Page) ([]models.Order, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.Order
	for _, o := range s.orders {
		if matchesFilter(o, f) {
			matched = append(matched, o)
		}
	}

	total := len(matched)
	if page.Size <= 0 {
		return matched, total, nil
	}

	start := page.Number * page.Size
	if start >= total {
		return []models.Order{}, total, nil
	}
	end := start + page.Size
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *InMemory) FindByCustomer(ctx context.Context, customerID int) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Order
	for _, o := range s.orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *InMemory) MostRecentSalesDate(ctx context.Context) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest time.Time
	found := false
	for _, o := range s.orders {
		if !found || o.SalesDate.After(latest) {
			latest = o.SalesDate
			found = true
		}
	}
	return latest, found, nil
}

func (s *InMemory) CustomersWithOrderBetween(ctx context.Context, start, end time.Time) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := map[int]struct{}{}
	for _, o := range s.orders {
		if !o.SalesDate.Before(DateOnly(start)) && !o.SalesDate.After(DateOnly(end)) {
			seen[o.CustomerID] = struct{}{}
		}
	}
	return sortedIDs(seen), nil
}

func (s *InMemory) CustomersWithAnyOrderUpTo(ctx context.Context, date time.Time) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := map[int]struct{}{}
	for _, o := range s.orders {
		if !o.SalesDate.After(DateOnly(date)) {
			seen[o.CustomerID] = struct{}{}
		}
	}
	return sortedIDs(seen), nil
}

func (s *InMemory) OrderCountsByCustomerMonth(ctx context.Context) (map[int]map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := map[int]map[string]int{}
	for _, o := range s.orders {
		byMonth, ok := counts[o.CustomerID]
		if !ok {
			byMonth = map[string]int{}
			counts[o.CustomerID] = byMonth
		}
		byMonth[MonthKey(o.SalesDate)]++
	}
	return counts, nil
}

func (s *InMemory) OrderCountsByCustomerQuarter(ctx context.Context) (map[int]map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := map[int]map[string]int{}
	for _, o := range s.orders {
		byQuarter, ok := counts[o.CustomerID]
		if !ok {
			byQuarter = map[string]int{}
			counts[o.CustomerID] = byQuarter
		}
		byQuarter[QuarterKey(o.SalesDate)]++
	}
	return counts, nil
}

func (s *InMemory) LifetimeOrderCounts(ctx context.Context) (map[int]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := map[int]int{}
	for _, o := range s.orders {
		counts[o.CustomerID]++
	}
	return counts, nil
}

func (s *InMemory) LifetimeSpendByCustomer(ctx context.Context) (map[int]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	spend := map[int]float64{}
	for _, o := range s.orders {
		spend[o.CustomerID] += o.TotalCost
	}
	return spend, nil
}

// DateOnly truncates a timestamp to its UTC calendar date. Sales dates carry
// no time-of-day anywhere in the system.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MonthKey buckets a date into its calendar month, e.g. "2024-03".
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// QuarterKey buckets a date into its calendar quarter, e.g. "2024-Q1".
func QuarterKey(t time.Time) string {
	q := (int(t.UTC().Month())-1)/3 + 1
	return fmt.Sprintf("%d-Q%d", t.UTC().Year(), q)
}

func matchesFilter(o models.Order, f models.Filter) bool {
	if f.CustomerID != nil && o.CustomerID != *f.CustomerID {
		return false
	}
	if f.SalesType != nil && o.SalesType != *f.SalesType {
		return false
	}
	if len(f.ProductIDs) > 0 {
		found := false
		for _, pid := range f.ProductIDs {
			if o.ProductID == pid {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	// Single date takes precedence over a range when both are present.
	switch {
	case f.SingleDate != nil:
		if !o.SalesDate.Equal(DateOnly(*f.SingleDate)) {
			return false
		}
	case f.StartDate != nil && f.EndDate != nil:
		if o.SalesDate.Before(DateOnly(*f.StartDate)) || o.SalesDate.After(DateOnly(*f.EndDate)) {
			return false
		}
	}
	return true
}

func sortedIDs(set map[int]struct{}) []int {
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
