package reports

import (
	"fmt"
	"strconv"

	"superstore-analytics/internal/format"
	"superstore-analytics/internal/models"
)

// Table is the display form of a report: every cell is already formatted.
type Table struct {
	Name    string     `json:"name"`
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Align string `json:"align"`
}

func text(key, label string) Column { return Column{Key: key, Label: label, Align: "left"} }

func number(key, label string) Column { return Column{Key: key, Label: label, Align: "right"} }

// BuildTable formats a result produced by r.Run.
func BuildTable(r Report, result any, f *format.Formatter) (Table, error) {
	t := Table{Name: r.Name, Title: r.Title, Rows: [][]string{}}

	switch rows := result.(type) {
	case []models.RegionTotals:
		t.Columns = []Column{text("region", "Region"), number("total_sales", "Total Sales"), number("total_profit", "Total Profit")}
		for _, x := range rows {
			t.Rows = append(t.Rows, []string{x.Region, f.Currency(x.TotalSales), f.Currency(x.TotalProfit)})
		}
	case []models.CategoryProfit:
		t.Columns = []Column{text("category", "Category"), number("total_profit", "Total Profit")}
		for _, x := range rows {
			t.Rows = append(t.Rows, []string{x.Category, f.Currency(x.TotalProfit)})
		}
	case []models.SubCategoryTotals:
		t.Columns = []Column{text("sub_category", "Sub-Category"), number("total_sales", "Total Sales"), number("total_profit", "Total Profit")}
		for _, x := range rows {
			t.Rows = append(t.Rows, []string{x.SubCategory, f.Currency(x.TotalSales), f.Currency(x.TotalProfit)})
		}
	case []models.CategoryMargin:
		t.Columns = []Column{text("category", "Category"), number("total_sales", "Total Sales"), number("total_profit", "Total Profit"), number("margin_pct", "Margin")}
		for _, x := range rows {
			t.Rows = append(t.Rows, []string{x.Category, f.Currency(x.TotalSales), f.Currency(x.TotalProfit), f.Percent(x.MarginPct)})
		}
	case []models.MonthlyTotals:
		t.Columns = []Column{text("month", "Month"), number("total_sales", "Total Sales"), number("total_profit", "Total Profit")}
		for _, x := range rows {
			t.Rows = append(t.Rows, []string{x.Month, f.Currency(x.TotalSales), f.Currency(x.TotalProfit)})
		}
	case []models.CategoryTotals:
		t.Columns = []Column{text("category", "Category"), number("total_sales", "Total Sales"), number("total_profit", "Total Profit")}
		for _, x := range rows {
			t.Rows = append(t.Rows, []string{x.Category, f.Currency(x.TotalSales), f.Currency(x.TotalProfit)})
		}
	case []models.OrderWithRegionTotal:
		t.Columns = []Column{
			text("order_id", "Order ID"), text("order_date", "Order Date"), text("region", "Region"),
			text("category", "Category"), text("product_name", "Product"),
			number("sales", "Sales"), number("region_total_sales", "Region Total Sales"),
		}
		for _, x := range rows {
			t.Rows = append(t.Rows, []string{
				x.OrderID, x.OrderDate.Format("2006-01-02"), x.Region, x.Category, x.ProductName,
				f.Currency(x.Sales), f.Currency(x.RegionTotalSales),
			})
		}
	case models.PivotTable:
		t.Columns = []Column{text("category", "Category")}
		for _, c := range rows.Columns {
			t.Columns = append(t.Columns, number(c, c))
		}
		for _, x := range rows.Rows {
			row := []string{x.Category}
			for _, v := range x.Values {
				row = append(row, f.Currency(v))
			}
			t.Rows = append(t.Rows, row)
		}
	case []models.CustomerVolume:
		t.Columns = []Column{text("customer_id", "Customer ID"), number("order_count", "Order Lines"), number("total_sales", "Total Sales")}
		for _, x := range rows {
			t.Rows = append(t.Rows, []string{x.CustomerID, f.Int(x.OrderCount), f.Currency(x.TotalSales)})
		}
	case []models.RegionShare:
		t.Columns = []Column{text("region", "Region"), number("total_sales", "Total Sales"), number("share_pct", "Share")}
		for _, x := range rows {
			t.Rows = append(t.Rows, []string{x.Region, f.Currency(x.TotalSales), f.Percent(x.SharePct)})
		}
	case []models.CustomerValue:
		t.Columns = []Column{number("rank", "Rank"), text("customer_id", "Customer ID"), number("total_sales", "Total Sales"), number("total_profit", "Total Profit")}
		for _, x := range rows {
			t.Rows = append(t.Rows, []string{strconv.Itoa(x.Rank), x.CustomerID, f.Currency(x.TotalSales), f.Currency(x.TotalProfit)})
		}
	case []models.DiscountProfit:
		t.Columns = []Column{number("discount", "Discount"), number("avg_profit", "Average Profit")}
		for _, x := range rows {
			t.Rows = append(t.Rows, []string{f.Decimal(x.Discount), f.Currency(x.AvgProfit)})
		}
	case []models.YearlyGrowth:
		t.Columns = []Column{text("year", "Year"), number("total_sales", "Total Sales"), number("growth_pct", "Growth")}
		for _, x := range rows {
			t.Rows = append(t.Rows, []string{strconv.Itoa(x.Year), f.Currency(x.TotalSales), f.Percent(x.GrowthPct)})
		}
	case []models.CategoryDiscount:
		t.Columns = []Column{text("category", "Category"), number("avg_discount", "Average Discount")}
		for _, x := range rows {
			t.Rows = append(t.Rows, []string{x.Category, f.Decimal(x.AvgDiscount)})
		}
	case []models.MonthlyChange:
		t.Columns = []Column{text("month", "Month"), number("total_sales", "Total Sales"), number("change", "Change to Next Month")}
		for _, x := range rows {
			t.Rows = append(t.Rows, []string{x.Month, f.Currency(x.TotalSales), f.CurrencyPtr(x.Change)})
		}
	default:
		return Table{}, fmt.Errorf("report %s: unsupported result type %T", r.Name, result)
	}
	return t, nil
}

// RenderTable runs report r against e and formats it, keeping at most limit
// rows when limit > 0.
func RenderTable(e *Engine, r Report, f *format.Formatter, limit int) (Table, error) {
	return BuildTable(r, Truncate(r.Run(e), limit), f)
}
