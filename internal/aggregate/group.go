package aggregate

// Groups is the result of GroupBy. Keys are kept in first-seen order so that
// grouping is deterministic for a given input order.
type Groups[K comparable, T any] struct {
	keys []K
	rows map[K][]T
}

// GroupBy partitions rows by key.
func GroupBy[T any, K comparable](rows []T, key func(T) K) *Groups[K, T] {
	g := &Groups[K, T]{rows: make(map[K][]T)}
	for _, r := range rows {
		k := key(r)
		if _, ok := g.rows[k]; !ok {
			g.keys = append(g.keys, k)
		}
		g.rows[k] = append(g.rows[k], r)
	}
	return g
}

func (g *Groups[K, T]) Len() int { return len(g.keys) }

// Keys returns a copy of the group keys in first-seen order.
func (g *Groups[K, T]) Keys() []K {
	out := make([]K, len(g.keys))
	copy(out, g.keys)
	return out
}

// Rows returns the members of group k, or nil if there is no such group.
func (g *Groups[K, T]) Rows(k K) []T {
	return g.rows[k]
}

// Map folds every group into one output row, in key order.
func Map[K comparable, T, R any](g *Groups[K, T], fn func(key K, rows []T) R) []R {
	out := make([]R, 0, len(g.keys))
	for _, k := range g.keys {
		out = append(out, fn(k, g.rows[k]))
	}
	return out
}

// Distinct returns the distinct keys of rows in first-seen order.
func Distinct[T any, K comparable](rows []T, key func(T) K) []K {
	seen := make(map[K]struct{})
	var out []K
	for _, r := range rows {
		k := key(r)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// Filter returns the rows for which keep is true. The result is never nil.
func Filter[T any](rows []T, keep func(T) bool) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
