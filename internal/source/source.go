// Package source loads the Superstore order table from a CSV file or a
// PostgreSQL table. Loading is strict: the first malformed row fails the
// whole load and nothing is coerced.
package source

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"superstore-analytics/internal/models"
)

var (
	ErrEmptyFile     = errors.New("no header row")
	ErrMissingColumn = errors.New("missing required column")
	ErrInvalidValue  = errors.New("invalid value")
)

// Source produces the full order set once.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]models.Order, error)
}

// LoadError locates a rejected row. Line is the 1-based line of a CSV file
// or the 1-based row number of a query result.
type LoadError struct {
	Line   int
	Column string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d, column %s: %v", e.Line, e.Column, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func invalid(line int, column, format string, args ...any) *LoadError {
	return &LoadError{
		Line:   line,
		Column: column,
		Err:    fmt.Errorf("%w: %s", ErrInvalidValue, fmt.Sprintf(format, args...)),
	}
}

// validate enforces the Order invariants shared by every source.
func validate(o models.Order, line int) error {
	text := []struct {
		column, value string
	}{
		{colOrderID, o.OrderID},
		{colCustomerID, o.CustomerID},
		{colRegion, o.Region},
		{colCategory, o.Category},
		{colSubCategory, o.SubCategory},
		{colProductName, o.ProductName},
	}
	for _, f := range text {
		if strings.TrimSpace(f.value) == "" {
			return invalid(line, f.column, "empty")
		}
	}
	if o.OrderDate.IsZero() {
		return invalid(line, colOrderDate, "empty")
	}

	for _, f := range []struct {
		column string
		value  float64
	}{{colSales, o.Sales}, {colProfit, o.Profit}, {colDiscount, o.Discount}} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return invalid(line, f.column, "not a finite number")
		}
	}
	if o.Sales < 0 {
		return invalid(line, colSales, "negative sales %v", o.Sales)
	}
	if o.Discount < 0 || o.Discount > 1 {
		return invalid(line, colDiscount, "discount %v outside [0,1]", o.Discount)
	}
	if o.Quantity < 1 {
		return invalid(line, colQuantity, "quantity %d must be positive", o.Quantity)
	}
	return nil
}
