package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"olivecrm/internal/order/models"
)

type OrderStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *OrderStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestOrderStoreSuite(t *testing.T) {
	suite.Run(t, new(OrderStoreSuite))
}

func (s *OrderStoreSuite) seed(customerID, productID, quantity int, cost float64, salesDate time.Time) models.Order {
	o := models.Order{
		CustomerID: customerID,
		ProductID:  productID,
		Quantity:   quantity,
		TotalCost:  cost,
		SalesType:  "Direct - B2B",
		SalesDate:  salesDate,
	}
	s.Require().NoError(s.store.Create(s.ctx, &o))
	return o
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// TestCreation verifies id assignment and date normalization.
func (s *OrderStoreSuite) TestCreation() {
	s.Run("assigns sequential ids", func() {
		first := s.seed(1, 1, 1, 10, date(2024, time.May, 1))
		second := s.seed(1, 1, 1, 10, date(2024, time.May, 2))
		s.Equal(first.ID+1, second.ID)
	})

	s.Run("truncates sales date to the calendar day", func() {
		o := models.Order{
			CustomerID: 1,
			ProductID:  1,
			Quantity:   1,
			SalesDate:  time.Date(2024, time.May, 1, 15, 42, 7, 0, time.UTC),
		}
		s.Require().NoError(s.store.Create(s.ctx, &o))
		s.Equal(date(2024, time.May, 1), o.SalesDate)
	})
}

// TestFiltering verifies the filter semantics shared by listing, export and
// the metrics aggregator.
func (s *OrderStoreSuite) TestFiltering() {
	s.seed(1, 10, 1, 10, date(2024, time.May, 1))
	s.seed(1, 20, 1, 20, date(2024, time.May, 2))
	s.seed(2, 10, 1, 30, date(2024, time.May, 2))
	s.seed(2, 30, 1, 40, date(2024, time.May, 3))

	s.Run("no constraints returns everything", func() {
		orders, total, err := s.store.FindFiltered(s.ctx, models.Filter{}, models.Unpaged())
		s.Require().NoError(err)
		s.Len(orders, 4)
		s.Equal(4, total)
	})

	s.Run("filters by customer", func() {
		customerID := 2
		orders, total, err := s.store.FindFiltered(s.ctx, models.Filter{CustomerID: &customerID}, models.Unpaged())
		s.Require().NoError(err)
		s.Equal(2, total)
		for _, o := range orders {
			s.Equal(2, o.CustomerID)
		}
	})

	s.Run("filters by product set", func() {
		_, total, err := s.store.FindFiltered(s.ctx, models.Filter{ProductIDs: []int{10, 30}}, models.Unpaged())
		s.Require().NoError(err)
		s.Equal(3, total)
	})

	s.Run("filters by date range inclusively", func() {
		start, end := date(2024, time.May, 2), date(2024, time.May, 3)
		_, total, err := s.store.FindFiltered(s.ctx, models.Filter{StartDate: &start, EndDate: &end}, models.Unpaged())
		s.Require().NoError(err)
		s.Equal(3, total)
	})

	s.Run("single date overrides a range", func() {
		single := date(2024, time.May, 1)
		start, end := date(2024, time.May, 1), date(2024, time.May, 3)
		_, total, err := s.store.FindFiltered(s.ctx, models.Filter{
			SingleDate: &single,
			StartDate:  &start,
			EndDate:    &end,
		}, models.Unpaged())
		s.Require().NoError(err)
		s.Equal(1, total)
	})

	s.Run("combines constraints", func() {
		customerID := 1
		salesType := "Direct - B2B"
		_, total, err := s.store.FindFiltered(s.ctx, models.Filter{
			CustomerID: &customerID,
			SalesType:  &salesType,
			ProductIDs: []int{10},
		}, models.Unpaged())
		s.Require().NoError(err)
		s.Equal(1, total)
	})
}

// TestPagination verifies page slicing against the full match count.
func (s *OrderStoreSuite) TestPagination() {
	for i := 0; i < 5; i++ {
		s.seed(1, 1, 1, 10, date(2024, time.May, 1+i))
	}

	s.Run("returns a middle page with the full total", func() {
		orders, total, err := s.store.FindFiltered(s.ctx, models.Filter{}, models.Page{Number: 1, Size: 2})
		s.Require().NoError(err)
		s.Equal(5, total)
		s.Len(orders, 2)
		s.Equal(3, orders[0].ID)
	})

	s.Run("truncates the last page", func() {
		orders, _, err := s.store.FindFiltered(s.ctx, models.Filter{}, models.Page{Number: 2, Size: 2})
		s.Require().NoError(err)
		s.Len(orders, 1)
	})

	s.Run("returns empty past the end", func() {
		orders, total, err := s.store.FindFiltered(s.ctx, models.Filter{}, models.Page{Number: 9, Size: 2})
		s.Require().NoError(err)
		s.Empty(orders)
		s.Equal(5, total)
	})
}

// TestAnalyticsGroupings verifies the raw groupings the segmentation engine
// consumes.
func (s *OrderStoreSuite) TestAnalyticsGroupings() {
	s.Run("most recent sales date reports absence", func() {
		_, ok, err := s.store.MostRecentSalesDate(s.ctx)
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("most recent sales date picks the maximum", func() {
		s.seed(1, 1, 1, 10, date(2024, time.May, 3))
		s.seed(1, 1, 1, 10, date(2024, time.May, 9))
		s.seed(2, 1, 1, 10, date(2024, time.May, 5))

		latest, ok, err := s.store.MostRecentSalesDate(s.ctx)
		s.Require().NoError(err)
		s.True(ok)
		s.Equal(date(2024, time.May, 9), latest)
	})

	s.Run("window membership is inclusive and deduplicated", func() {
		s.seed(3, 1, 1, 10, date(2024, time.May, 5))
		s.seed(3, 1, 1, 10, date(2024, time.May, 6))

		ids, err := s.store.CustomersWithOrderBetween(s.ctx, date(2024, time.May, 5), date(2024, time.May, 9))
		s.Require().NoError(err)
		s.Equal([]int{1, 2, 3}, ids)
	})

	s.Run("monthly and quarterly buckets count per calendar period", func() {
		s.seed(4, 1, 1, 10, date(2024, time.January, 10))
		s.seed(4, 1, 1, 10, date(2024, time.January, 20))
		s.seed(4, 1, 1, 10, date(2024, time.February, 1))

		byMonth, err := s.store.OrderCountsByCustomerMonth(s.ctx)
		s.Require().NoError(err)
		s.Equal(2, byMonth[4]["2024-01"])
		s.Equal(1, byMonth[4]["2024-02"])

		byQuarter, err := s.store.OrderCountsByCustomerQuarter(s.ctx)
		s.Require().NoError(err)
		s.Equal(3, byQuarter[4]["2024-Q1"])
	})

	s.Run("lifetime counts and spend accumulate per customer", func() {
		s.seed(5, 1, 1, 12.5, date(2024, time.March, 1))
		s.seed(5, 1, 1, 7.5, date(2024, time.March, 2))

		counts, err := s.store.LifetimeOrderCounts(s.ctx)
		s.Require().NoError(err)
		s.Equal(2, counts[5])

		spend, err := s.store.LifetimeSpendByCustomer(s.ctx)
		s.Require().NoError(err)
		s.InDelta(20, spend[5], 1e-9)
	})
}

// TestBucketKeys pins the bucket key formats the Postgres store must match.
func (s *OrderStoreSuite) TestBucketKeys() {
	s.Equal("2024-03", MonthKey(date(2024, time.March, 15)))
	s.Equal("2024-Q1", QuarterKey(date(2024, time.March, 31)))
	s.Equal("2024-Q2", QuarterKey(date(2024, time.April, 1)))
	s.Equal("2024-Q4", QuarterKey(date(2024, time.December, 31)))
}
