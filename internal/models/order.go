package models

import "time"

// Order is one line item of the Superstore table. An order spanning several
// products appears once per product, so OrderID is not unique.
type Order struct {
	OrderID     string    `json:"order_id"`
	CustomerID  string    `json:"customer_id"`
	OrderDate   time.Time `json:"order_date"`
	Region      string    `json:"region"`
	Category    string    `json:"category"`
	SubCategory string    `json:"sub_category"`
	ProductName string    `json:"product_name"`
	Sales       float64   `json:"sales"`
	Profit      float64   `json:"profit"`
	Discount    float64   `json:"discount"`
	Quantity    int       `json:"quantity"`
}

// Month returns the order date truncated to year-month, e.g. "2016-11".
func (o Order) Month() string {
	return o.OrderDate.Format("2006-01")
}

// Year returns the calendar year of the order date.
func (o Order) Year() int {
	return o.OrderDate.Year()
}

// Reference values of the Region column. Other regions are accepted.
const (
	RegionEast    = "East"
	RegionWest    = "West"
	RegionSouth   = "South"
	RegionCentral = "Central"
)

// FixedRegions is the pivot column order used by the original reports.
var FixedRegions = []string{RegionEast, RegionWest, RegionSouth, RegionCentral}
