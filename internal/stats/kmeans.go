package stats

import (
	"math"
	"sort"
)

const kmeansMaxIterations = 100

// KMeans1D partitions one-dimensional values into k groups minimizing
// within-group variance. Centers are seeded from evenly spaced quantiles,
// which makes the result deterministic for a given input. Returns the
// cluster label of each value, in input order. Labels are arbitrary;
// callers that need a stable ordering sort clusters by mean afterwards.
func KMeans1D(xs []float64, k int) []int {
	labels := make([]int, len(xs))
	if len(xs) == 0 || k <= 1 {
		return labels
	}
	if k > len(xs) {
		k = len(xs)
	}

	centers := make([]float64, k)
	for i := 0; i < k; i++ {
		// Quantile seeding spreads initial centers across the value range.
		centers[i] = Quantile(xs, (float64(i)+0.5)/float64(k))
	}
	sort.Float64s(centers)

	for iter := 0; iter < kmeansMaxIterations; iter++ {
		changed := false
		for i, x := range xs {
			best := 0
			bestDist := math.Abs(x - centers[0])
			for c := 1; c < k; c++ {
				if d := math.Abs(x - centers[c]); d < bestDist {
					best = c
					bestDist = d
				}
			}
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}

		sums := make([]float64, k)
		counts := make([]int, k)
		for i, x := range xs {
			sums[labels[i]] += x
			counts[labels[i]]++
		}
		for c := 0; c < k; c++ {
			if counts[c] > 0 {
				centers[c] = sums[c] / float64(counts[c])
			}
		}

		if !changed {
			break
		}
	}
	return labels
}
