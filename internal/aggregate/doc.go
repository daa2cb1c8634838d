// Package aggregate is a small tabular toolkit over in-memory slices:
// group-by with stable key order, sum/avg/count measures, window (partition)
// sums, lag/lead, ranking, pivoting and multi-key ordering.
//
// Every function reads its input and allocates its output; nothing here
// mutates the rows it is given, except Sort which orders a caller-owned slice.
package aggregate
