package reports

import (
	"slices"

	"superstore-analytics/internal/aggregate"
	"superstore-analytics/internal/models"
)

// SalesProfitByRegion sums Sales and Profit per region, highest sales first.
func (e *Engine) SalesProfitByRegion() []models.RegionTotals {
	out := aggregate.Map(aggregate.GroupBy(e.orders, region),
		func(r string, rows []models.Order) models.RegionTotals {
			return models.RegionTotals{
				Region:      r,
				TotalSales:  aggregate.Sum(rows, sales),
				TotalProfit: aggregate.Sum(rows, profit),
			}
		})
	return aggregate.Sort(out, aggregate.By(
		aggregate.Desc(func(r models.RegionTotals) float64 { return r.TotalSales }),
		aggregate.Asc(func(r models.RegionTotals) string { return r.Region }),
	))
}

// ProfitByCategory sums Profit per category, most profitable first.
func (e *Engine) ProfitByCategory() []models.CategoryProfit {
	out := aggregate.Map(aggregate.GroupBy(e.orders, category),
		func(c string, rows []models.Order) models.CategoryProfit {
			return models.CategoryProfit{Category: c, TotalProfit: aggregate.Sum(rows, profit)}
		})
	return aggregate.Sort(out, aggregate.By(
		aggregate.Desc(func(r models.CategoryProfit) float64 { return r.TotalProfit }),
		aggregate.Asc(func(r models.CategoryProfit) string { return r.Category }),
	))
}

// SalesProfitBySubCategory sums Sales and Profit per sub-category, highest
// sales first.
func (e *Engine) SalesProfitBySubCategory() []models.SubCategoryTotals {
	out := aggregate.Map(aggregate.GroupBy(e.orders, func(o models.Order) string { return o.SubCategory }),
		func(sc string, rows []models.Order) models.SubCategoryTotals {
			return models.SubCategoryTotals{
				SubCategory: sc,
				TotalSales:  aggregate.Sum(rows, sales),
				TotalProfit: aggregate.Sum(rows, profit),
			}
		})
	return aggregate.Sort(out, aggregate.By(
		aggregate.Desc(func(r models.SubCategoryTotals) float64 { return r.TotalSales }),
		aggregate.Asc(func(r models.SubCategoryTotals) string { return r.SubCategory }),
	))
}

// MarginByCategory reports profit as a percentage of sales per category.
// A category without sales has a nil margin and sorts last.
func (e *Engine) MarginByCategory() []models.CategoryMargin {
	out := aggregate.Map(aggregate.GroupBy(e.orders, category),
		func(c string, rows []models.Order) models.CategoryMargin {
			s, p := aggregate.Sum(rows, sales), aggregate.Sum(rows, profit)
			return models.CategoryMargin{
				Category:    c,
				TotalSales:  s,
				TotalProfit: p,
				MarginPct:   aggregate.Round2Ptr(aggregate.Ratio(p, s, 100)),
			}
		})
	return aggregate.Sort(out, aggregate.By(
		aggregate.NilsLast(func(r models.CategoryMargin) *float64 { return r.MarginPct }, true),
		aggregate.Asc(func(r models.CategoryMargin) string { return r.Category }),
	))
}

// MonthlyTrend sums Sales and Profit per calendar month, oldest first.
func (e *Engine) MonthlyTrend() []models.MonthlyTotals {
	out := aggregate.Map(aggregate.GroupBy(e.orders, models.Order.Month),
		func(m string, rows []models.Order) models.MonthlyTotals {
			return models.MonthlyTotals{
				Month:       m,
				TotalSales:  aggregate.Sum(rows, sales),
				TotalProfit: aggregate.Sum(rows, profit),
			}
		})
	return aggregate.Sort(out, aggregate.Asc(func(r models.MonthlyTotals) string { return r.Month }))
}

// ProfitableCategories lists categories whose total profit exceeds
// ProfitableThreshold.
func (e *Engine) ProfitableCategories() []models.CategoryTotals {
	out := aggregate.Filter(e.categoryTotals(), func(c models.CategoryTotals) bool {
		return c.TotalProfit > ProfitableThreshold
	})
	return aggregate.Sort(out, aggregate.By(
		aggregate.Desc(func(r models.CategoryTotals) float64 { return r.TotalProfit }),
		aggregate.Asc(func(r models.CategoryTotals) string { return r.Category }),
	))
}

func (e *Engine) categoryTotals() []models.CategoryTotals {
	return aggregate.Map(aggregate.GroupBy(e.orders, category),
		func(c string, rows []models.Order) models.CategoryTotals {
			return models.CategoryTotals{
				Category:    c,
				TotalSales:  aggregate.Sum(rows, sales),
				TotalProfit: aggregate.Sum(rows, profit),
			}
		})
}

// OrdersWithRegionTotal returns every order line with its region's sales
// total attached, ordered by region then category.
func (e *Engine) OrdersWithRegionTotal() []models.OrderWithRegionTotal {
	totals := aggregate.PartitionSum(e.orders, region, sales)
	out := make([]models.OrderWithRegionTotal, len(e.orders))
	for i, o := range e.orders {
		out[i] = models.OrderWithRegionTotal{Order: o, RegionTotalSales: totals[i]}
	}
	return aggregate.Sort(out, aggregate.By(
		aggregate.Asc(func(r models.OrderWithRegionTotal) string { return r.Region }),
		aggregate.Asc(func(r models.OrderWithRegionTotal) string { return r.Category }),
	))
}

// RegionCategoryPivot sums Sales per category with one column per region.
func (e *Engine) RegionCategoryPivot() models.PivotTable {
	cols := e.pivotColumns()
	keys, values := aggregate.Pivot(e.orders, category, region, sales, cols)

	rows := make([]models.PivotRow, len(keys))
	for i := range keys {
		rows[i] = models.PivotRow{Category: keys[i], Values: values[i]}
	}
	aggregate.Sort(rows, aggregate.Asc(func(r models.PivotRow) string { return r.Category }))
	return models.PivotTable{Columns: cols, Rows: rows}
}

// pivotColumns returns the fixed regions in their reference order, or the
// observed ones: reference regions first, any others alphabetically.
func (e *Engine) pivotColumns() []string {
	if e.fixedPivot {
		return slices.Clone(models.FixedRegions)
	}
	observed := aggregate.Distinct(e.orders, region)
	cols := make([]string, 0, len(observed))
	for _, r := range models.FixedRegions {
		if slices.Contains(observed, r) {
			cols = append(cols, r)
		}
	}
	var extra []string
	for _, r := range observed {
		if !slices.Contains(models.FixedRegions, r) {
			extra = append(extra, r)
		}
	}
	slices.Sort(extra)
	return append(cols, extra...)
}

// HighVolumeCustomers lists customers with more than HighVolumeThreshold
// order lines, highest sales first.
func (e *Engine) HighVolumeCustomers() []models.CustomerVolume {
	out := aggregate.Map(aggregate.GroupBy(e.orders, customerID),
		func(c string, rows []models.Order) models.CustomerVolume {
			return models.CustomerVolume{
				CustomerID: c,
				OrderCount: len(rows),
				TotalSales: aggregate.Sum(rows, sales),
			}
		})
	out = aggregate.Filter(out, func(c models.CustomerVolume) bool { return c.OrderCount > HighVolumeThreshold })
	return aggregate.Sort(out, aggregate.By(
		aggregate.Desc(func(r models.CustomerVolume) float64 { return r.TotalSales }),
		aggregate.Asc(func(r models.CustomerVolume) string { return r.CustomerID }),
	))
}

// RegionContribution reports each region's share of the grand sales total.
func (e *Engine) RegionContribution() []models.RegionShare {
	grand := aggregate.Sum(e.orders, sales)
	out := aggregate.Map(aggregate.GroupBy(e.orders, region),
		func(r string, rows []models.Order) models.RegionShare {
			s := aggregate.Sum(rows, sales)
			return models.RegionShare{
				Region:     r,
				TotalSales: s,
				SharePct:   aggregate.Round2Ptr(aggregate.Ratio(s, grand, 100)),
			}
		})
	return aggregate.Sort(out, aggregate.By(
		aggregate.NilsLast(func(r models.RegionShare) *float64 { return r.SharePct }, true),
		aggregate.Asc(func(r models.RegionShare) string { return r.Region }),
	))
}

// RegionPerformance is the cents-rounded form of SalesProfitByRegion.
func (e *Engine) RegionPerformance() []models.RegionTotals {
	out := e.SalesProfitByRegion()
	for i := range out {
		out[i].TotalSales = aggregate.Round2(out[i].TotalSales)
		out[i].TotalProfit = aggregate.Round2(out[i].TotalProfit)
	}
	return out
}

// CustomerLifetimeValue ranks customers by total sales, ties broken by
// total profit. Ranks are standard competition ranks: customers equal on
// both totals share a rank and the next rank is skipped.
func (e *Engine) CustomerLifetimeValue() []models.CustomerValue {
	out := aggregate.Map(aggregate.GroupBy(e.orders, customerID),
		func(c string, rows []models.Order) models.CustomerValue {
			return models.CustomerValue{
				CustomerID:  c,
				TotalSales:  aggregate.Sum(rows, sales),
				TotalProfit: aggregate.Sum(rows, profit),
			}
		})
	aggregate.Sort(out, aggregate.By(
		aggregate.Desc(func(r models.CustomerValue) float64 { return r.TotalSales }),
		aggregate.Desc(func(r models.CustomerValue) float64 { return r.TotalProfit }),
		aggregate.Asc(func(r models.CustomerValue) string { return r.CustomerID }),
	))
	ranks := aggregate.Rank(out, func(a, b models.CustomerValue) bool {
		return a.TotalSales == b.TotalSales && a.TotalProfit == b.TotalProfit
	})
	for i := range out {
		out[i].Rank = ranks[i]
	}
	return out
}

// DiscountVsProfit averages Profit per exact discount level.
func (e *Engine) DiscountVsProfit() []models.DiscountProfit {
	out := aggregate.Map(aggregate.GroupBy(e.orders, discount),
		func(d float64, rows []models.Order) models.DiscountProfit {
			avg, _ := aggregate.Avg(rows, profit)
			return models.DiscountProfit{Discount: d, AvgProfit: avg}
		})
	return aggregate.Sort(out, aggregate.Asc(func(r models.DiscountProfit) float64 { return r.Discount }))
}

// YearlyGrowth reports sales per year and the change against the previous
// year in percent. The first year, and any year following a zero-sales year,
// has a nil growth.
func (e *Engine) YearlyGrowth() []models.YearlyGrowth {
	out := aggregate.Map(aggregate.GroupBy(e.orders, models.Order.Year),
		func(y int, rows []models.Order) models.YearlyGrowth {
			return models.YearlyGrowth{Year: y, TotalSales: aggregate.Sum(rows, sales)}
		})
	aggregate.Sort(out, aggregate.Asc(func(r models.YearlyGrowth) int { return r.Year }))

	totals := make([]float64, len(out))
	for i, r := range out {
		totals[i] = r.TotalSales
	}
	for i, prev := range aggregate.Lag(totals) {
		if prev != nil {
			out[i].GrowthPct = aggregate.Ratio(totals[i]-*prev, *prev, 100)
		}
	}
	return out
}

// AverageDiscountByCategory averages the discount per category, highest
// first.
func (e *Engine) AverageDiscountByCategory() []models.CategoryDiscount {
	out := aggregate.Map(aggregate.GroupBy(e.orders, category),
		func(c string, rows []models.Order) models.CategoryDiscount {
			avg, _ := aggregate.Avg(rows, discount)
			return models.CategoryDiscount{Category: c, AvgDiscount: aggregate.Round2(avg)}
		})
	return aggregate.Sort(out, aggregate.By(
		aggregate.Desc(func(r models.CategoryDiscount) float64 { return r.AvgDiscount }),
		aggregate.Asc(func(r models.CategoryDiscount) string { return r.Category }),
	))
}

// MonthlySalesChange reports monthly sales and the difference to the
// following month. The last month has a nil change.
func (e *Engine) MonthlySalesChange() []models.MonthlyChange {
	trend := e.MonthlyTrend()
	totals := make([]float64, len(trend))
	for i, m := range trend {
		totals[i] = m.TotalSales
	}

	out := make([]models.MonthlyChange, len(trend))
	for i, next := range aggregate.Lead(totals) {
		out[i] = models.MonthlyChange{Month: trend[i].Month, TotalSales: totals[i]}
		if next != nil {
			change := *next - totals[i]
			out[i].Change = &change
		}
	}
	return out
}
