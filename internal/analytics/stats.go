package analytics

import (
	"math"
	"sort"
)

// quantile computes the q-th quantile (0 <= q <= 1) using linear
// interpolation between order statistics at position (n-1)*q. Returns NaN
// for empty input.
func quantile(values []float64, q float64) float64 {
	n := len(values)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return values[0]
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// roundTo rounds to the given number of decimal places
func roundTo(v float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(v*shift) / shift
}

// finite converts a possibly-NaN/Inf statistic into a nullable value.
// NaN never leaks into JSON output.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// valueCount is one entry of an ordered frequency table
type valueCount struct {
	value string
	count int
}

// countValues builds a frequency table over string keys, ordered by
// descending count with ties broken by first appearance.
func countValues(keys []string) []valueCount {
	counts := make(map[string]int, len(keys))
	firstSeen := make(map[string]int, len(keys))
	for i, k := range keys {
		if _, ok := counts[k]; !ok {
			firstSeen[k] = i
		}
		counts[k]++
	}

	out := make([]valueCount, 0, len(counts))
	for k, c := range counts {
		out = append(out, valueCount{value: k, count: c})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return firstSeen[out[i].value] < firstSeen[out[j].value]
	})
	return out
}

// binCounts partitions values into equal-width bins over [min, max] and
// counts membership. The top edge is inclusive. A degenerate range
// (min == max) is widened by 0.5 on each side.
func binCounts(values []float64, bins int) (counts []int, edges []float64) {
	lo, hi := 0.0, 1.0
	if len(values) > 0 {
		lo, hi = values[0], values[0]
		for _, v := range values[1:] {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}

	counts = make([]int, bins)
	edges = make([]float64, bins+1)
	width := (hi - lo) / float64(bins)
	for i := range edges {
		edges[i] = lo + width*float64(i)
	}
	edges[bins] = hi

	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		counts[idx]++
	}
	return counts, edges
}
