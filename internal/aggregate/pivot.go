package aggregate

// Pivot sums m for every (rowKey, colKey) cell. Row keys are returned in
// first-seen order; values[i][j] is the cell for keys[i] and cols[j]. Rows
// whose column key is not in cols are left out of every cell but still
// produce a row.
func Pivot[T any](rows []T, rowKey, colKey func(T) string, m func(T) float64, cols []string) (keys []string, values [][]float64) {
	colIdx := make(map[string]int, len(cols))
	for i, c := range cols {
		colIdx[c] = i
	}
	rowIdx := make(map[string]int)
	for _, r := range rows {
		rk := rowKey(r)
		i, ok := rowIdx[rk]
		if !ok {
			i = len(keys)
			rowIdx[rk] = i
			keys = append(keys, rk)
			values = append(values, make([]float64, len(cols)))
		}
		if j, ok := colIdx[colKey(r)]; ok {
			values[i][j] += m(r)
		}
	}
	return keys, values
}
