package models

// Product is one sellable item variant. The (name, variant) pair is the
// natural key the ingestion path matches on.
type Product struct {
	ID              int     `json:"productId"`
	ProductName     string  `json:"productName"`
	ProductVariant  string  `json:"productVariant"`
	IndividualPrice float64 `json:"individualPrice"`
}
