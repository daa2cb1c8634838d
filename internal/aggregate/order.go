package aggregate

import (
	"cmp"
	"slices"
)

// Comparator orders two rows: negative if a sorts first.
type Comparator[T any] func(a, b T) int

// Asc orders rows by v ascending.
func Asc[T any, V cmp.Ordered](v func(T) V) Comparator[T] {
	return func(a, b T) int { return cmp.Compare(v(a), v(b)) }
}

// Desc orders rows by v descending.
func Desc[T any, V cmp.Ordered](v func(T) V) Comparator[T] {
	return func(a, b T) int { return cmp.Compare(v(b), v(a)) }
}

// NilsLast orders rows by a nullable value, descending when desc is set,
// with nil values after every non-nil one.
func NilsLast[T any](v func(T) *float64, desc bool) Comparator[T] {
	return func(a, b T) int {
		va, vb := v(a), v(b)
		switch {
		case va == nil && vb == nil:
			return 0
		case va == nil:
			return 1
		case vb == nil:
			return -1
		case desc:
			return cmp.Compare(*vb, *va)
		default:
			return cmp.Compare(*va, *vb)
		}
	}
}

// By chains comparators; later ones break ties of earlier ones.
func By[T any](cmps ...Comparator[T]) Comparator[T] {
	return func(a, b T) int {
		for _, c := range cmps {
			if r := c(a, b); r != 0 {
				return r
			}
		}
		return 0
	}
}

// Sort stably orders rows in place and returns them.
func Sort[T any](rows []T, c Comparator[T]) []T {
	slices.SortStableFunc(rows, c)
	return rows
}
