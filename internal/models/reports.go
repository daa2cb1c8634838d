package models

// Ratio-style fields are pointers: nil means the value is undefined (zero
// denominator, first or last period) and encodes as JSON null.

type RegionTotals struct {
	Region      string  `json:"region"`
	TotalSales  float64 `json:"total_sales"`
	TotalProfit float64 `json:"total_profit"`
}

type CategoryProfit struct {
	Category    string  `json:"category"`
	TotalProfit float64 `json:"total_profit"`
}

type SubCategoryTotals struct {
	SubCategory string  `json:"sub_category"`
	TotalSales  float64 `json:"total_sales"`
	TotalProfit float64 `json:"total_profit"`
}

type CategoryMargin struct {
	Category    string   `json:"category"`
	TotalSales  float64  `json:"total_sales"`
	TotalProfit float64  `json:"total_profit"`
	MarginPct   *float64 `json:"margin_pct"`
}

type MonthlyTotals struct {
	Month       string  `json:"month"`
	TotalSales  float64 `json:"total_sales"`
	TotalProfit float64 `json:"total_profit"`
}

type CategoryTotals struct {
	Category    string  `json:"category"`
	TotalSales  float64 `json:"total_sales"`
	TotalProfit float64 `json:"total_profit"`
}

// OrderWithRegionTotal keeps the source row and attaches the sales total of
// its region.
type OrderWithRegionTotal struct {
	Order
	RegionTotalSales float64 `json:"region_total_sales"`
}

// PivotTable holds Sales summed per Category (rows) and Region (columns).
// Values[i] belongs to Columns[i].
type PivotTable struct {
	Columns []string   `json:"columns"`
	Rows    []PivotRow `json:"rows"`
}

type PivotRow struct {
	Category string    `json:"category"`
	Values   []float64 `json:"values"`
}

type CustomerVolume struct {
	CustomerID string  `json:"customer_id"`
	OrderCount int     `json:"order_count"`
	TotalSales float64 `json:"total_sales"`
}

type RegionShare struct {
	Region     string   `json:"region"`
	TotalSales float64  `json:"total_sales"`
	SharePct   *float64 `json:"share_pct"`
}

type CustomerValue struct {
	CustomerID  string  `json:"customer_id"`
	TotalSales  float64 `json:"total_sales"`
	TotalProfit float64 `json:"total_profit"`
	Rank        int     `json:"rank"`
}

type DiscountProfit struct {
	Discount  float64 `json:"discount"`
	AvgProfit float64 `json:"avg_profit"`
}

type YearlyGrowth struct {
	Year       int      `json:"year"`
	TotalSales float64  `json:"total_sales"`
	GrowthPct  *float64 `json:"growth_pct"`
}

type CategoryDiscount struct {
	Category    string  `json:"category"`
	AvgDiscount float64 `json:"avg_discount"`
}

type MonthlyChange struct {
	Month      string   `json:"month"`
	TotalSales float64  `json:"total_sales"`
	Change     *float64 `json:"change"`
}
