// Package stats provides the small numeric toolkit used by the analysis
// components: moments, quantiles, correlation, least squares and 1-D
// k-means. Everything is deterministic so repeated runs over the same
// ledger produce identical results.
package stats

import (
	"errors"
	"math"
	"sort"
)

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// StdPop returns the population standard deviation (ddof=0).
func StdPop(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := Mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}

// StdSample returns the sample standard deviation (ddof=1), or 0 when
// fewer than two values are given.
func StdSample(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := Mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// ZScores standardizes values against the population mean and deviation.
// A zero deviation yields all-zero scores instead of NaN.
func ZScores(xs []float64) []float64 {
	out := make([]float64, len(xs))
	m := Mean(xs)
	sd := StdPop(xs)
	if sd == 0 {
		return out
	}
	for i, x := range xs {
		out[i] = (x - m) / sd
	}
	return out
}

// Quantile returns the q-th quantile (0..1) using linear interpolation
// between closest ranks.
func Quantile(xs []float64, q float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// ErrNoVariance is returned by Pearson when either series is constant.
var ErrNoVariance = errors.New("constant series has no defined correlation")

// Pearson returns the linear correlation coefficient of two aligned series.
func Pearson(xs, ys []float64) (float64, error) {
	if len(xs) != len(ys) || len(xs) < 2 {
		return 0, errors.New("series must have equal length >= 2")
	}
	mx, my := Mean(xs), Mean(ys)
	var sxy, sxx, syy float64
	for i := range xs {
		dx := xs[i] - mx
		dy := ys[i] - my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, ErrNoVariance
	}
	return sxy / math.Sqrt(sxx*syy), nil
}

// LinearFit fits y = slope*x + intercept by ordinary least squares.
func LinearFit(xs, ys []float64) (slope, intercept float64) {
	if len(xs) == 0 || len(xs) != len(ys) {
		return 0, 0
	}
	mx, my := Mean(xs), Mean(ys)
	var sxy, sxx float64
	for i := range xs {
		dx := xs[i] - mx
		sxy += dx * (ys[i] - my)
		sxx += dx * dx
	}
	if sxx == 0 {
		return 0, my
	}
	slope = sxy / sxx
	intercept = my - slope*mx
	return slope, intercept
}

// MAE returns the mean absolute error between observed and predicted.
func MAE(observed, predicted []float64) float64 {
	if len(observed) == 0 || len(observed) != len(predicted) {
		return 0
	}
	var sum float64
	for i := range observed {
		sum += math.Abs(observed[i] - predicted[i])
	}
	return sum / float64(len(observed))
}

// R2 returns the coefficient of determination. A constant observed series
// yields R2 = 0 by convention.
func R2(observed, predicted []float64) float64 {
	if len(observed) == 0 || len(observed) != len(predicted) {
		return 0
	}
	m := Mean(observed)
	var ssRes, ssTot float64
	for i := range observed {
		dr := observed[i] - predicted[i]
		dt := observed[i] - m
		ssRes += dr * dr
		ssTot += dt * dt
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}
