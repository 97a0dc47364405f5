// Package forecast produces short-horizon spend estimates from a normalized
// ledger. Interchangeable strategies sit behind a common interface; the
// comparison picks the one with the best held-out R². A strategy that fails
// to fit is excluded, never retried.
package forecast

import (
	"errors"

	"gastos/internal/core"
	"gastos/internal/stats"
)

// Strategy is one forecasting approach over an evenly indexed series.
type Strategy interface {
	// Name identifies the strategy in comparison results.
	Name() string
	// Fit trains on the chronological series. A non-nil error excludes the
	// strategy from comparison.
	Fit(series []float64) error
	// Forecast projects the next steps values after the training window.
	Forecast(steps int) []float64
}

// linearStrategy is the baseline: ordinary least squares against the
// observation index.
type linearStrategy struct {
	slope, intercept float64
	n                int
}

func (s *linearStrategy) Name() string { return "RegresionLineal" }

func (s *linearStrategy) Fit(series []float64) error {
	if len(series) < 2 {
		return &core.ModelFitError{Strategy: s.Name(), Err: errors.New("need at least 2 points")}
	}
	xs := make([]float64, len(series))
	for i := range xs {
		xs[i] = float64(i)
	}
	s.slope, s.intercept = stats.LinearFit(xs, series)
	s.n = len(series)
	return nil
}

func (s *linearStrategy) Forecast(steps int) []float64 {
	out := make([]float64, steps)
	for i := 0; i < steps; i++ {
		out[i] = s.slope*float64(s.n+i) + s.intercept
	}
	return out
}

// arStrategy fits an autoregressive model on first differences, in the
// spirit of ARIMA(1,1,0): differencing removes the level, the AR
// coefficient captures short-term momentum.
type arStrategy struct {
	phi      float64
	lastDiff float64
	lastVal  float64
}

func (s *arStrategy) Name() string { return "ARIMA" }

func (s *arStrategy) Fit(series []float64) error {
	if len(series) < 4 {
		return &core.ModelFitError{Strategy: s.Name(), Err: errors.New("need at least 4 points to difference and regress")}
	}
	diffs := make([]float64, len(series)-1)
	for i := 1; i < len(series); i++ {
		diffs[i-1] = series[i] - series[i-1]
	}

	// Regress diff[t] on diff[t-1].
	xs := diffs[:len(diffs)-1]
	ys := diffs[1:]
	var sxy, sxx float64
	for i := range xs {
		sxy += xs[i] * ys[i]
		sxx += xs[i] * xs[i]
	}
	if sxx == 0 {
		return &core.ModelFitError{Strategy: s.Name(), Err: errors.New("differenced series is constant")}
	}
	s.phi = sxy / sxx
	// Clamp to a stationary region so forecasts do not explode.
	if s.phi > 0.99 {
		s.phi = 0.99
	}
	if s.phi < -0.99 {
		s.phi = -0.99
	}
	s.lastDiff = diffs[len(diffs)-1]
	s.lastVal = series[len(series)-1]
	return nil
}

func (s *arStrategy) Forecast(steps int) []float64 {
	out := make([]float64, steps)
	val := s.lastVal
	diff := s.lastDiff
	for i := 0; i < steps; i++ {
		diff *= s.phi
		val += diff
		out[i] = val
	}
	return out
}

// holtStrategy implements exponential smoothing with an additive trend
// (Holt's method) using fixed smoothing constants.
type holtStrategy struct {
	alpha, beta  float64
	level, trend float64
}

func newHoltStrategy() *holtStrategy {
	return &holtStrategy{alpha: 0.5, beta: 0.3}
}

func (s *holtStrategy) Name() string { return "SuavizadoExponencial" }

func (s *holtStrategy) Fit(series []float64) error {
	if len(series) < 2 {
		return &core.ModelFitError{Strategy: s.Name(), Err: errors.New("need at least 2 points")}
	}
	s.level = series[0]
	s.trend = series[1] - series[0]
	for _, y := range series[1:] {
		prevLevel := s.level
		s.level = s.alpha*y + (1-s.alpha)*(s.level+s.trend)
		s.trend = s.beta*(s.level-prevLevel) + (1-s.beta)*s.trend
	}
	return nil
}

func (s *holtStrategy) Forecast(steps int) []float64 {
	out := make([]float64, steps)
	for i := 0; i < steps; i++ {
		out[i] = s.level + float64(i+1)*s.trend
	}
	return out
}
