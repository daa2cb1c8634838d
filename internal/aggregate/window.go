package aggregate

// PartitionSum computes sum(m) over each row's partition and returns it per
// row, keeping row count and order: out[i] is the total of rows[i]'s group.
func PartitionSum[T any, K comparable](rows []T, key func(T) K, m func(T) float64) []float64 {
	totals := make(map[K]float64)
	for _, r := range rows {
		totals[key(r)] += m(r)
	}
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = totals[key(r)]
	}
	return out
}

// Lag returns, for each position, the previous value in the sequence. The
// first position has no predecessor and is nil. values must already be in
// sequence order.
func Lag(values []float64) []*float64 {
	out := make([]*float64, len(values))
	for i := 1; i < len(values); i++ {
		v := values[i-1]
		out[i] = &v
	}
	return out
}

// Lead returns, for each position, the next value in the sequence. The last
// position is nil.
func Lead(values []float64) []*float64 {
	out := make([]*float64, len(values))
	for i := 0; i+1 < len(values); i++ {
		v := values[i+1]
		out[i] = &v
	}
	return out
}
