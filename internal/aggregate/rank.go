package aggregate

// Rank assigns standard competition ranks (1, 2, 2, 4) to rows that are
// already sorted by the ranking order. tie reports whether two adjacent rows
// share a rank.
func Rank[T any](rows []T, tie func(a, b T) bool) []int {
	ranks := make([]int, len(rows))
	for i := range rows {
		if i > 0 && tie(rows[i-1], rows[i]) {
			ranks[i] = ranks[i-1]
			continue
		}
		ranks[i] = i + 1
	}
	return ranks
}

// DenseRank assigns ranks without gaps after ties (1, 2, 2, 3).
func DenseRank[T any](rows []T, tie func(a, b T) bool) []int {
	ranks := make([]int, len(rows))
	for i := range rows {
		switch {
		case i == 0:
			ranks[i] = 1
		case tie(rows[i-1], rows[i]):
			ranks[i] = ranks[i-1]
		default:
			ranks[i] = ranks[i-1] + 1
		}
	}
	return ranks
}
