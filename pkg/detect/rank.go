// Package detect turns a day of GPS pings and order events into per-driver
// cheat scores and a list of orders that need manual review.
package detect

import "sort"

// PercentileRank returns, for every value, its average rank divided by the
// number of values. Tied values share the mean of their 1-based positions, so
// every result lies in (0, 1].
func PercentileRank(values []float64) []float64 {
	n := len(values)
	out := make([]float64, n)
	if n == 0 {
		return out
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return values[idx[a]] < values[idx[b]]
	})

	for i := 0; i < n; {
		j := i
		for j+1 < n && values[idx[j+1]] == values[idx[i]] {
			j++
		}
		// positions i+1 .. j+1
		avg := float64(i+j+2) / 2
		for k := i; k <= j; k++ {
			out[idx[k]] = avg / float64(n)
		}
		i = j + 1
	}
	return out
}

// RankWhere ranks value(i) only among the indices for which include(i) holds.
// Excluded indices get nil rather than a rank of 0: a driver that never
// triggered a metric is not part of that metric's population.
func RankWhere(n int, value func(i int) float64, include func(i int) bool) []*float64 {
	out := make([]*float64, n)

	members := make([]int, 0, n)
	values := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if include(i) {
			members = append(members, i)
			values = append(values, value(i))
		}
	}

	ranks := PercentileRank(values)
	for k, i := range members {
		r := ranks[k]
		out[i] = &r
	}
	return out
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
