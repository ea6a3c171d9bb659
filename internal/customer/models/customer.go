package models

// Customer carries the little identity the CRM holds about a buyer: an id
// referenced by orders, and the zipcode ingested from sales data.
type Customer struct {
	ID      int    `json:"customerId"`
	Zipcode string `json:"zipcode"`
}
