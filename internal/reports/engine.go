package reports

import (
	"slices"
	"time"

	"superstore-analytics/internal/aggregate"
	"superstore-analytics/internal/models"
)

const (
	// ProfitableThreshold is the total profit a category must exceed to be
	// listed by ProfitableCategories.
	ProfitableThreshold = 10000.0
	// HighVolumeThreshold is the line-item count a customer must exceed to
	// be listed by HighVolumeCustomers.
	HighVolumeThreshold = 10
)

// Engine computes the Superstore reports over an immutable order set. All
// methods are pure functions of the dataset and safe for concurrent use.
type Engine struct {
	orders     []models.Order
	fixedPivot bool
}

type Option func(*Engine)

// WithFixedPivotRegions limits RegionCategoryPivot to the East, West, South
// and Central columns regardless of the regions present in the data.
func WithFixedPivotRegions() Option {
	return func(e *Engine) { e.fixedPivot = true }
}

// New builds an engine over a private copy of orders.
func New(orders []models.Order, opts ...Option) *Engine {
	e := &Engine{orders: slices.Clone(orders)}
	if e.orders == nil {
		e.orders = []models.Order{}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Len returns the number of order lines.
func (e *Engine) Len() int { return len(e.orders) }

// Summary describes the loaded dataset.
type Summary struct {
	Records     int       `json:"records"`
	Orders      int       `json:"orders"`
	Customers   int       `json:"customers"`
	FirstOrder  time.Time `json:"first_order,omitzero"`
	LastOrder   time.Time `json:"last_order,omitzero"`
	TotalSales  float64   `json:"total_sales"`
	TotalProfit float64   `json:"total_profit"`
}

func (e *Engine) Summary() Summary {
	s := Summary{
		Records:     len(e.orders),
		Orders:      len(aggregate.Distinct(e.orders, orderID)),
		Customers:   len(aggregate.Distinct(e.orders, customerID)),
		TotalSales:  aggregate.Sum(e.orders, sales),
		TotalProfit: aggregate.Sum(e.orders, profit),
	}
	for i, o := range e.orders {
		if i == 0 || o.OrderDate.Before(s.FirstOrder) {
			s.FirstOrder = o.OrderDate
		}
		if i == 0 || o.OrderDate.After(s.LastOrder) {
			s.LastOrder = o.OrderDate
		}
	}
	return s
}

func sales(o models.Order) float64 { return o.Sales }

func profit(o models.Order) float64 { return o.Profit }

func discount(o models.Order) float64 { return o.Discount }

func region(o models.Order) string { return o.Region }

func category(o models.Order) string { return o.Category }

func customerID(o models.Order) string { return o.CustomerID }

func orderID(o models.Order) string { return o.OrderID }
