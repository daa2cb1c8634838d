package aggregate

import (
	"math"

	"github.com/shopspring/decimal"
)

// Sum adds measure m over rows. The empty sum is 0.
func Sum[T any](rows []T, m func(T) float64) float64 {
	var total float64
	for _, r := range rows {
		total += m(r)
	}
	return total
}

// Avg returns the arithmetic mean of m over rows. ok is false for no rows.
func Avg[T any](rows []T, m func(T) float64) (avg float64, ok bool) {
	if len(rows) == 0 {
		return 0, false
	}
	return Sum(rows, m) / float64(len(rows)), true
}

// CountIf counts the rows matching pred.
func CountIf[T any](rows []T, pred func(T) bool) int {
	n := 0
	for _, r := range rows {
		if pred(r) {
			n++
		}
	}
	return n
}

// Ratio returns scale*num/den, or nil when den is zero or the result is not a
// finite number.
func Ratio(num, den, scale float64) *float64 {
	if den == 0 {
		return nil
	}
	v := scale * num / den
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Round2 rounds to two decimal places, half away from zero. Non-finite values
// are returned unchanged.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Round2Ptr applies Round2 to a nullable value.
func Round2Ptr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := Round2(*v)
	return &r
}
