package models

import "time"

// Order is a single sale line. The analytics layer only ever reads orders;
// mutation happens through ingestion and manual creation.
type Order struct {
	ID             int       `json:"id"`
	CustomerID     int       `json:"customerId"`
	ProductID      int       `json:"productId"`
	Quantity       int       `json:"quantity"`
	TotalCost      float64   `json:"totalCost"`
	OrderMethod    string    `json:"orderMethod"`
	SalesDate      time.Time `json:"salesDate"`
	SalesType      string    `json:"salesType"`
	ShippingMethod string    `json:"shippingMethod"`
}

// Filter narrows order retrieval. A nil field means "no constraint".
// SingleDate and the Start/End range are mutually exclusive; when both are
// supplied SingleDate wins. Listing, CSV export and the sales-metrics
// aggregator all go through the same filter so they can never disagree.
type Filter struct {
	CustomerID *int
	SalesType  *string
	ProductIDs []int
	SingleDate *time.Time
	StartDate  *time.Time
	EndDate    *time.Time
}

// Page requests a slice of a result set. A Size of 0 means unpaged.
type Page struct {
	Number int
	Size   int
}

// Unpaged returns everything in one page.
func Unpaged() Page { return Page{} }

// SalesMetrics is computed on demand from a filtered order set.
type SalesMetrics struct {
	TotalSales        int     `json:"totalSales"`
	TotalAmount       float64 `json:"totalAmount"`
	AverageOrderValue float64 `json:"averageOrderValue"`
}

// SegmentCategory groups segment kinds along the three RFM axes.
type SegmentCategory string

const (
	CategoryRecency   SegmentCategory = "Recency"
	CategoryFrequency SegmentCategory = "Frequency"
	CategoryMonetary  SegmentCategory = "Monetary"
)

// SegmentKind names a customer segment.
type SegmentKind string

const (
	SegmentActive    SegmentKind = "Active"
	SegmentReturning SegmentKind = "Returning"
	SegmentDormant   SegmentKind = "Dormant"

	SegmentFrequent   SegmentKind = "Frequent"
	SegmentOccasional SegmentKind = "Occasional"
	SegmentOneTime    SegmentKind = "One-time"

	SegmentHighValue SegmentKind = "High-Value"
	SegmentMidTier   SegmentKind = "Mid-Tier"
	SegmentLowSpend  SegmentKind = "Low-Spend"
)

// CustomerSegment is a named bucket of customer ids. Segments within one
// category are mutually exclusive.
type CustomerSegment struct {
	CustomerIDs     []int           `json:"customerIds"`
	SegmentType     SegmentKind     `json:"segmentType"`
	SegmentCategory SegmentCategory `json:"segmentCategory"`
	CustomerCount   int             `json:"customerCount"`
}

// NewCustomerSegment builds a segment with its derived count. A nil id slice
// becomes an empty one so JSON renders [] rather than null.
func NewCustomerSegment(ids []int, kind SegmentKind, category SegmentCategory) CustomerSegment {
	if ids == nil {
		ids = []int{}
	}
	return CustomerSegment{
		CustomerIDs:     ids,
		SegmentType:     kind,
		SegmentCategory: category,
		CustomerCount:   len(ids),
	}
}

// TopProduct is one entry of a customer's most-purchased ranking.
type TopProduct struct {
	ProductID     int     `json:"productId"`
	ProductName   string  `json:"productName"`
	TotalQuantity int     `json:"totalQuantity"`
	UnitPrice     float64 `json:"individualPrice"`
}

// PurchaseHistory is a parallel pair of sequences, one entry per order in
// retrieval order. Lengths are always equal.
type PurchaseHistory struct {
	PurchaseCounts []int    `json:"purchaseCounts"`
	PurchaseDates  []string `json:"purchaseDates"`
}
