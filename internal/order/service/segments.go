package service

import (
	"context"
	"math"
	"sort"
	"time"

	"olivecrm/internal/order/models"
	dErrors "olivecrm/pkg/domain-errors"
	"olivecrm/pkg/requestcontext"
)

// Segmentation thresholds. Recency windows run backwards from the reference
// date; frequency and monetary analysis are lifetime-based.
const (
	activeWindowDays    = 30
	returningWindowDays = 365
	// Returning additionally requires a repeat purchaser.
	returningMinLifetimeOrders = 2

	// Frequent: more than this many orders in at least one calendar month.
	frequentMonthlyThreshold = 10
	// Occasional: between these many orders in at least one calendar quarter.
	occasionalQuarterMin = 3
	occasionalQuarterMax = 5

	highValueFraction = 0.10
	lowSpendFraction  = 0.20
)

// referenceDate anchors recency to data freshness: the most recent sales date
// in the store, or the request clock when there are no orders at all.
func (s *Service) referenceDate(ctx context.Context) (time.Time, error) {
	latest, ok, err := s.store.MostRecentSalesDate(ctx)
	if err != nil {
		return time.Time{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve reference date")
	}
	if !ok {
		return dateOnly(requestcontext.Now(ctx)), nil
	}
	return dateOnly(latest), nil
}

// RecencySegments partitions every customer that has ever purchased into
// Active, Returning and Dormant. The three sets are disjoint by construction:
// Returning subtracts Active, and Dormant is the remainder of the whole
// ever-purchased population.
func (s *Service) RecencySegments(ctx context.Context) ([]models.CustomerSegment, error) {
	if s.metrics != nil {
		defer s.metrics.ObserveSegmentation("recency", time.Now())
	}

	ref, err := s.referenceDate(ctx)
	if err != nil {
		return nil, err
	}

	activeIDs, err := s.store.CustomersWithOrderBetween(ctx, ref.AddDate(0, 0, -activeWindowDays), ref)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load active customers")
	}
	active := toSet(activeIDs)

	yearIDs, err := s.store.CustomersWithOrderBetween(ctx, ref.AddDate(0, 0, -returningWindowDays), ref)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load returning customers")
	}
	lifetime, err := s.store.LifetimeOrderCounts(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load order counts")
	}

	returning := map[int]struct{}{}
	for _, id := range yearIDs {
		if _, isActive := active[id]; isActive {
			continue
		}
		if lifetime[id] >= returningMinLifetimeOrders {
			returning[id] = struct{}{}
		}
	}

	everIDs, err := s.store.CustomersWithAnyOrderUpTo(ctx, ref)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load purchased customers")
	}

	dormant := map[int]struct{}{}
	for _, id := range everIDs {
		if _, ok := active[id]; ok {
			continue
		}
		if _, ok := returning[id]; ok {
			continue
		}
		dormant[id] = struct{}{}
	}

	return []models.CustomerSegment{
		models.NewCustomerSegment(sortedKeys(active), models.SegmentActive, models.CategoryRecency),
		models.NewCustomerSegment(sortedKeys(returning), models.SegmentReturning, models.CategoryRecency),
		models.NewCustomerSegment(sortedKeys(dormant), models.SegmentDormant, models.CategoryRecency),
	}, nil
}

// FrequencySegments buckets customers by lifetime ordering cadence. The base
// queries overlap, so strict set subtraction is applied in precedence order:
// Frequent wins over Occasional wins over One-time.
func (s *Service) FrequencySegments(ctx context.Context) ([]models.CustomerSegment, error) {
	if s.metrics != nil {
		defer s.metrics.ObserveSegmentation("frequency", time.Now())
	}

	byMonth, err := s.store.OrderCountsByCustomerMonth(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load monthly counts")
	}
	byQuarter, err := s.store.OrderCountsByCustomerQuarter(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load quarterly counts")
	}
	lifetime, err := s.store.LifetimeOrderCounts(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load order counts")
	}

	frequent := map[int]struct{}{}
	for id, months := range byMonth {
		for _, n := range months {
			if n > frequentMonthlyThreshold {
				frequent[id] = struct{}{}
				break
			}
		}
	}

	occasional := map[int]struct{}{}
	for id, quarters := range byQuarter {
		if _, ok := frequent[id]; ok {
			continue
		}
		for _, n := range quarters {
			if n >= occasionalQuarterMin && n <= occasionalQuarterMax {
				occasional[id] = struct{}{}
				break
			}
		}
	}

	oneTime := map[int]struct{}{}
	for id, n := range lifetime {
		if n != 1 {
			continue
		}
		if _, ok := frequent[id]; ok {
			continue
		}
		if _, ok := occasional[id]; ok {
			continue
		}
		oneTime[id] = struct{}{}
	}

	return []models.CustomerSegment{
		models.NewCustomerSegment(sortedKeys(frequent), models.SegmentFrequent, models.CategoryFrequency),
		models.NewCustomerSegment(sortedKeys(occasional), models.SegmentOccasional, models.CategoryFrequency),
		models.NewCustomerSegment(sortedKeys(oneTime), models.SegmentOneTime, models.CategoryFrequency),
	}, nil
}

// MonetarySegments ranks customers by lifetime spend and cuts the ranking
// into three contiguous slices. The cuts are clamped so the slices never
// overlap and never go out of range:
//
//	n = 0          -> all segments empty
//	n = 1          -> High-Value only (disjointness outranks the minimum-one
//	                  rule for Low-Spend)
//	n = 2..5       -> High-Value and Low-Spend hold one customer each
//	larger n       -> ceil(10%) / remainder / ceil(20%)
func (s *Service) MonetarySegments(ctx context.Context) ([]models.CustomerSegment, error) {
	if s.metrics != nil {
		defer s.metrics.ObserveSegmentation("monetary", time.Now())
	}

	spend, err := s.store.LifetimeSpendByCustomer(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load customer spend")
	}

	ranked := rankBySpend(spend)
	n := len(ranked)

	high, mid, low := monetaryCuts(n)

	return []models.CustomerSegment{
		models.NewCustomerSegment(ranked[:high], models.SegmentHighValue, models.CategoryMonetary),
		models.NewCustomerSegment(ranked[high:high+mid], models.SegmentMidTier, models.CategoryMonetary),
		models.NewCustomerSegment(ranked[high+mid:high+mid+low], models.SegmentLowSpend, models.CategoryMonetary),
	}, nil
}

// monetaryCuts returns the sizes of the High-Value, Mid-Tier and Low-Spend
// slices for a ranked population of n customers. high + mid + low == n.
func monetaryCuts(n int) (high, mid, low int) {
	if n == 0 {
		return 0, 0, 0
	}

	high = int(math.Ceil(float64(n) * highValueFraction))
	if high < 1 {
		high = 1
	}
	if high > n {
		high = n
	}

	low = int(math.Ceil(float64(n) * lowSpendFraction))
	if low < 1 {
		low = 1
	}
	// Low-Spend only gets what remains after the High-Value cut.
	if low > n-high {
		low = n - high
	}

	mid = n - high - low
	return high, mid, low
}

// rankBySpend orders customer ids by lifetime spend descending, breaking ties
// by ascending id so the ranking is deterministic.
func rankBySpend(spend map[int]float64) []int {
	ids := make([]int, 0, len(spend))
	for id := range spend {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if spend[ids[i]] != spend[ids[j]] {
			return spend[ids[i]] > spend[ids[j]]
		}
		return ids[i] < ids[j]
	})
	return ids
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func toSet(ids []int) map[int]struct{} {
	set := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func sortedKeys(set map[int]struct{}) []int {
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
