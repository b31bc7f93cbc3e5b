package pipeline

import (
	"math"
	"sort"
)

// quantile computes the q-th quantile of values using linear interpolation
// between closest ranks, the same estimator the monitoring sheets were
// analyzed with. values need not be sorted. An empty input yields 0.
func quantile(values []float64, q float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return values[0]
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// median is the 0.5 quantile.
func median(values []float64) float64 {
	return quantile(values, 0.5)
}

// modeInt returns the most frequent value, nil for an empty input.
// Ties break toward the smallest value.
func modeInt(values []int) *int {
	if len(values) == 0 {
		return nil
	}
	counts := make(map[int]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	best := 0
	haveBest := false
	for v, c := range counts {
		if !haveBest || c > counts[best] || (c == counts[best] && v < best) {
			best = v
			haveBest = true
		}
	}
	return &best
}

// deviationPct is the signed percent distance of price from the group
// median, defined as 0 when the median is 0.
func deviationPct(price, groupMedian float64) float64 {
	if groupMedian == 0 {
		return 0
	}
	return (price - groupMedian) / groupMedian * 100
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
