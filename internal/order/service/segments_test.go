package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"olivecrm/internal/order/models"
	"olivecrm/internal/order/store"
	"olivecrm/pkg/platform/sentinel"
	"olivecrm/pkg/requestcontext"
)

type stubCatalog struct {
	products map[int]ProductInfo
}

func (c *stubCatalog) ProductInfo(ctx context.Context, id int) (ProductInfo, error) {
	if p, ok := c.products[id]; ok {
		return p, nil
	}
	return ProductInfo{}, sentinel.ErrNotFound
}

type stubDirectory struct {
	customers map[int]bool
}

func (d *stubDirectory) CustomerExists(ctx context.Context, id int) (bool, error) {
	return d.customers[id], nil
}

func newTestService(t *testing.T) (*Service, *store.InMemory) {
	t.Helper()
	st := store.NewInMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := New(st, &stubCatalog{products: map[int]ProductInfo{}}, &stubDirectory{customers: map[int]bool{}}, logger, nil)
	return svc, st
}

func d(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func seedOrder(t *testing.T, st *store.InMemory, customerID int, salesDate time.Time, totalCost float64) {
	t.Helper()
	err := st.Create(context.Background(), &models.Order{
		CustomerID: customerID,
		ProductID:  1,
		Quantity:   1,
		TotalCost:  totalCost,
		SalesDate:  salesDate,
	})
	require.NoError(t, err)
}

func segmentByKind(t *testing.T, segments []models.CustomerSegment, kind models.SegmentKind) models.CustomerSegment {
	t.Helper()
	for _, seg := range segments {
		if seg.SegmentType == kind {
			return seg
		}
	}
	t.Fatalf("segment %q not found", kind)
	return models.CustomerSegment{}
}

// requirePartition checks that the segments are pairwise disjoint and that
// their union equals the expected population.
func requirePartition(t *testing.T, segments []models.CustomerSegment, population []int) {
	t.Helper()
	seen := map[int]models.SegmentKind{}
	for _, seg := range segments {
		require.Equal(t, len(seg.CustomerIDs), seg.CustomerCount)
		for _, id := range seg.CustomerIDs {
			prev, dup := seen[id]
			require.False(t, dup, "customer %d in both %q and %q", id, prev, seg.SegmentType)
			seen[id] = seg.SegmentType
		}
	}
	require.Len(t, seen, len(population))
	for _, id := range population {
		require.Contains(t, seen, id)
	}
}

func TestRecencySegmentsPartitionEverPurchased(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	ref := d(2024, time.June, 30) // most recent sales date below

	// Active: ordered inside the 30-day window.
	seedOrder(t, st, 1, ref, 10)
	seedOrder(t, st, 2, ref.AddDate(0, 0, -29), 10)
	// Active despite old history: recent order wins.
	seedOrder(t, st, 3, d(2022, time.January, 5), 10)
	seedOrder(t, st, 3, ref.AddDate(0, 0, -10), 10)
	// Returning: two orders, latest 200 days back.
	seedOrder(t, st, 4, ref.AddDate(0, 0, -300), 10)
	seedOrder(t, st, 4, ref.AddDate(0, 0, -200), 10)
	// Dormant: single order outside the returning window.
	seedOrder(t, st, 5, ref.AddDate(0, 0, -400), 10)
	// Dormant: one order 100 days back, inside the year but not a repeat
	// purchaser, so not Returning.
	seedOrder(t, st, 6, ref.AddDate(0, 0, -100), 10)

	segments, err := svc.RecencySegments(ctx)
	require.NoError(t, err)
	require.Len(t, segments, 3)

	requirePartition(t, segments, []int{1, 2, 3, 4, 5, 6})
	require.Equal(t, []int{1, 2, 3}, segmentByKind(t, segments, models.SegmentActive).CustomerIDs)
	require.Equal(t, []int{4}, segmentByKind(t, segments, models.SegmentReturning).CustomerIDs)
	require.Equal(t, []int{5, 6}, segmentByKind(t, segments, models.SegmentDormant).CustomerIDs)
}

func TestRecencySegmentsEmptyStore(t *testing.T) {
	svc, _ := newTestService(t)

	// Pin the clock: with no orders the reference date falls back to "now"
	// and nothing must error.
	ctx := requestcontext.WithTime(context.Background(), d(2024, time.June, 30))

	segments, err := svc.RecencySegments(ctx)
	require.NoError(t, err)
	for _, seg := range segments {
		require.Empty(t, seg.CustomerIDs)
		require.Zero(t, seg.CustomerCount)
	}
}

func TestRecencyReferenceDateTracksData(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	// All orders are years in the past; the newest one anchors the window, so
	// the customer is still Active relative to the data.
	seedOrder(t, st, 7, d(2020, time.March, 1), 10)

	segments, err := svc.RecencySegments(ctx)
	require.NoError(t, err)
	require.Equal(t, []int{7}, segmentByKind(t, segments, models.SegmentActive).CustomerIDs)
}

func TestFrequencySegmentsExclusionOrder(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	// Frequent: 11 orders inside one calendar month.
	for i := 0; i < 11; i++ {
		seedOrder(t, st, 10, d(2024, time.March, 1+i), 5)
	}
	// Frequent AND occasional-shaped history: must land in Frequent only.
	for i := 0; i < 12; i++ {
		seedOrder(t, st, 11, d(2024, time.January, 1+i), 5)
	}
	seedOrder(t, st, 11, d(2023, time.July, 1), 5)
	seedOrder(t, st, 11, d(2023, time.August, 1), 5)
	seedOrder(t, st, 11, d(2023, time.September, 1), 5)
	// Occasional: 4 orders within one calendar quarter, spread over months.
	seedOrder(t, st, 12, d(2024, time.April, 2), 5)
	seedOrder(t, st, 12, d(2024, time.May, 9), 5)
	seedOrder(t, st, 12, d(2024, time.June, 11), 5)
	seedOrder(t, st, 12, d(2024, time.June, 20), 5)
	// One-time: exactly one lifetime order.
	seedOrder(t, st, 13, d(2024, time.February, 14), 5)
	// Neither: two orders in different quarters.
	seedOrder(t, st, 14, d(2023, time.January, 1), 5)
	seedOrder(t, st, 14, d(2024, time.June, 1), 5)

	segments, err := svc.FrequencySegments(ctx)
	require.NoError(t, err)

	require.Equal(t, []int{10, 11}, segmentByKind(t, segments, models.SegmentFrequent).CustomerIDs)
	require.Equal(t, []int{12}, segmentByKind(t, segments, models.SegmentOccasional).CustomerIDs)
	require.Equal(t, []int{13}, segmentByKind(t, segments, models.SegmentOneTime).CustomerIDs)

	// Customer 14 belongs to no frequency segment; everyone else appears
	// exactly once.
	seen := map[int]int{}
	for _, seg := range segments {
		for _, id := range seg.CustomerIDs {
			seen[id]++
		}
	}
	require.NotContains(t, seen, 14)
	for id, n := range seen {
		require.Equal(t, 1, n, "customer %d counted %d times", id, n)
	}
}

func TestMonetaryCutsBoundaryTable(t *testing.T) {
	tests := []struct {
		n                    int
		wantHigh, wantMid, wantLow int
	}{
		{0, 0, 0, 0},
		{1, 1, 0, 0},
		{2, 1, 0, 1},
		{3, 1, 1, 1},
		{4, 1, 2, 1},
		{5, 1, 3, 1},
		{6, 1, 3, 2},
		{10, 1, 7, 2},
		{100, 10, 70, 20},
	}
	for _, tc := range tests {
		high, mid, low := monetaryCuts(tc.n)
		require.Equal(t, tc.wantHigh, high, "n=%d high", tc.n)
		require.Equal(t, tc.wantMid, mid, "n=%d mid", tc.n)
		require.Equal(t, tc.wantLow, low, "n=%d low", tc.n)
		require.Equal(t, tc.n, high+mid+low, "n=%d cuts must cover the population", tc.n)
		require.GreaterOrEqual(t, mid, 0, "n=%d negative mid slice", tc.n)
	}
}

func TestMonetarySegmentsRanking(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	// Ten customers, spend descending with id: customer 1 spends 1000,
	// customer 10 spends 100.
	for id := 1; id <= 10; id++ {
		seedOrder(t, st, id, d(2024, time.January, id), float64(1100-id*100))
	}

	segments, err := svc.MonetarySegments(ctx)
	require.NoError(t, err)

	require.Equal(t, []int{1}, segmentByKind(t, segments, models.SegmentHighValue).CustomerIDs)
	require.Equal(t, []int{2, 3, 4, 5, 6, 7, 8}, segmentByKind(t, segments, models.SegmentMidTier).CustomerIDs)
	require.Equal(t, []int{9, 10}, segmentByKind(t, segments, models.SegmentLowSpend).CustomerIDs)
	requirePartition(t, segments, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
}

func TestMonetarySegmentsTieBreaksByCustomerID(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedOrder(t, st, 3, d(2024, time.January, 1), 50)
	seedOrder(t, st, 1, d(2024, time.January, 2), 50)
	seedOrder(t, st, 2, d(2024, time.January, 3), 50)

	segments, err := svc.MonetarySegments(ctx)
	require.NoError(t, err)

	// All spends equal: rank falls back to ascending id, so customer 1 is
	// High-Value and customer 3 is Low-Spend, deterministically.
	require.Equal(t, []int{1}, segmentByKind(t, segments, models.SegmentHighValue).CustomerIDs)
	require.Equal(t, []int{2}, segmentByKind(t, segments, models.SegmentMidTier).CustomerIDs)
	require.Equal(t, []int{3}, segmentByKind(t, segments, models.SegmentLowSpend).CustomerIDs)
}

func TestMonetarySegmentsEmptyPopulation(t *testing.T) {
	svc, _ := newTestService(t)

	segments, err := svc.MonetarySegments(context.Background())
	require.NoError(t, err)
	require.Len(t, segments, 3)
	for _, seg := range segments {
		require.Empty(t, seg.CustomerIDs)
	}
}

func TestSegmentationIsIdempotent(t *testing.T) {
	svc, st := newTestService(t)
	ctx := requestcontext.WithTime(context.Background(), d(2024, time.June, 30))

	for id := 1; id <= 20; id++ {
		seedOrder(t, st, id, d(2024, time.March, id), float64(id*10))
		if id%3 == 0 {
			seedOrder(t, st, id, d(2024, time.June, id), float64(id))
		}
	}

	for _, compute := range []func(context.Context) ([]models.CustomerSegment, error){
		svc.RecencySegments, svc.FrequencySegments, svc.MonetarySegments,
	} {
		first, err := compute(ctx)
		require.NoError(t, err)
		second, err := compute(ctx)
		require.NoError(t, err)
		require.Equal(t, first, second)
	}
}
