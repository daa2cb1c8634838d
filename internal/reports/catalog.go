package reports

import (
	"reflect"
	"strconv"
	"strings"

	"superstore-analytics/internal/models"
)

// Report is one entry of the report catalog.
type Report struct {
	Number      int    `json:"number"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`

	run func(*Engine) any
}

// Run computes the report. The concrete result type is the slice (or
// models.PivotTable) returned by the matching Engine method.
func (r Report) Run(e *Engine) any {
	return r.run(e)
}

var catalog = []Report{
	{
		Number: 1, Name: "sales-by-region", Title: "Sales and Profit by Region",
		Description: "Which regions bring in the most revenue, and whether that revenue is profitable.",
		run:         func(e *Engine) any { return e.SalesProfitByRegion() },
	},
	{
		Number: 2, Name: "profit-by-category", Title: "Profit by Category",
		Description: "Total profit contributed by each product category.",
		run:         func(e *Engine) any { return e.ProfitByCategory() },
	},
	{
		Number: 3, Name: "sales-by-sub-category", Title: "Sales and Profit by Sub-Category",
		Description: "High-selling sub-categories are not always profitable ones; loss makers stand out here.",
		run:         func(e *Engine) any { return e.SalesProfitBySubCategory() },
	},
	{
		Number: 4, Name: "margin-by-category", Title: "Profit Margin by Category",
		Description: "Profit as a percentage of sales for each category.",
		run:         func(e *Engine) any { return e.MarginByCategory() },
	},
	{
		Number: 5, Name: "monthly-trend", Title: "Monthly Sales and Profit Trend",
		Description: "Month-by-month sales and profit, exposing seasonality.",
		run:         func(e *Engine) any { return e.MonthlyTrend() },
	},
	{
		Number: 6, Name: "profitable-categories", Title: "Highly Profitable Categories",
		Description: "Categories whose total profit exceeds 10,000.",
		run:         func(e *Engine) any { return e.ProfitableCategories() },
	},
	{
		Number: 7, Name: "orders-with-region-total", Title: "Order Lines with Regional Sales Total",
		Description: "Every order line next to the sales total of its region.",
		run:         func(e *Engine) any { return e.OrdersWithRegionTotal() },
	},
	{
		Number: 8, Name: "region-category-pivot", Title: "Sales by Category and Region",
		Description: "Category sales broken out into one column per region.",
		run:         func(e *Engine) any { return e.RegionCategoryPivot() },
	},
	{
		Number: 9, Name: "high-volume-customers", Title: "High-Volume Customers",
		Description: "Customers with more than 10 order lines and what they spent.",
		run:         func(e *Engine) any { return e.HighVolumeCustomers() },
	},
	{
		Number: 10, Name: "region-contribution", Title: "Regional Contribution to Sales",
		Description: "Each region's share of total company sales.",
		run:         func(e *Engine) any { return e.RegionContribution() },
	},
	{
		Number: 11, Name: "region-performance", Title: "Regional Performance",
		Description: "Regional sales and profit rounded to cents.",
		run:         func(e *Engine) any { return e.RegionPerformance() },
	},
	{
		Number: 12, Name: "customer-lifetime-value", Title: "Customer Lifetime Value",
		Description: "Customers ranked by total sales, ties broken by profit.",
		run:         func(e *Engine) any { return e.CustomerLifetimeValue() },
	},
	{
		Number: 13, Name: "discount-vs-profit", Title: "Discount vs Average Profit",
		Description: "Average profit per line at every discount level; deep discounts erode profit.",
		run:         func(e *Engine) any { return e.DiscountVsProfit() },
	},
	{
		Number: 14, Name: "yearly-growth", Title: "Year-over-Year Sales Growth",
		Description: "Annual sales and the percentage change against the previous year.",
		run:         func(e *Engine) any { return e.YearlyGrowth() },
	},
	{
		Number: 15, Name: "average-discount-by-category", Title: "Average Discount by Category",
		Description: "How heavily each category is discounted on average.",
		run:         func(e *Engine) any { return e.AverageDiscountByCategory() },
	},
	{
		Number: 16, Name: "monthly-sales-change", Title: "Month-over-Month Sales Change",
		Description: "Monthly sales and the difference to the following month.",
		run:         func(e *Engine) any { return e.MonthlySalesChange() },
	},
}

// Catalog returns every report in number order.
func Catalog() []Report {
	out := make([]Report, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a report by name or by number.
func Lookup(nameOrNumber string) (Report, bool) {
	key := strings.ToLower(strings.TrimSpace(nameOrNumber))
	if n, err := strconv.Atoi(key); err == nil {
		if n >= 1 && n <= len(catalog) {
			return catalog[n-1], true
		}
		return Report{}, false
	}
	for _, r := range catalog {
		if r.Name == key {
			return r, true
		}
	}
	return Report{}, false
}

// Truncate keeps at most n rows of a report result. n <= 0 leaves the
// result unchanged.
func Truncate(result any, n int) any {
	if n <= 0 {
		return result
	}
	if p, ok := result.(models.PivotTable); ok {
		if len(p.Rows) > n {
			p.Rows = p.Rows[:n]
		}
		return p
	}
	v := reflect.ValueOf(result)
	if v.Kind() != reflect.Slice || v.Len() <= n {
		return result
	}
	return v.Slice(0, n).Interface()
}
