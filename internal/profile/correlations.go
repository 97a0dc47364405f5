// Package profile derives descriptive views of a ledger: cross-category
// correlation, day-of-week seasonality, month-over-month comparison,
// amount clustering, weekly trend and outlier detection. Every function is
// a pure read over the ledger.
package profile

import (
	"errors"
	"sort"
	"time"

	"gastos/internal/core"
	"gastos/internal/stats"
)

// minCommonDays is the fewest shared spending days two categories need
// before their correlation is considered meaningful.
const minCommonDays = 3

type (
	// CorrelatedPair names the category pair with the highest coefficient.
	CorrelatedPair struct {
		Categories  [2]string `json:"categorias"`
		Coefficient float64   `json:"coeficiente"`
	}

	// CorrelationResult is the symmetric correlation table plus its peak.
	CorrelationResult struct {
		Pairs     map[string]map[string]float64 `json:"correlaciones"`
		Strongest *CorrelatedPair               `json:"mas_correlacionadas,omitempty"`
	}
)

// Correlations measures how category pairs move together across the days
// both spent on. Pairs sharing fewer than minCommonDays days, and pairs
// where either side is constant, are omitted. The table is symmetric.
func Correlations(ledger core.Ledger) CorrelationResult {
	byCatDay := make(map[string]map[time.Time]float64)
	for _, r := range ledger {
		days, ok := byCatDay[r.Category]
		if !ok {
			days = make(map[time.Time]float64)
			byCatDay[r.Category] = days
		}
		days[r.Date] += r.Amount
	}

	categories := ledger.Categories()
	result := CorrelationResult{Pairs: make(map[string]map[string]float64)}
	var strongest *CorrelatedPair

	for i := 0; i < len(categories); i++ {
		for j := i + 1; j < len(categories); j++ {
			a, b := categories[i], categories[j]
			xs, ys := alignedDailySeries(byCatDay[a], byCatDay[b])
			if len(xs) < minCommonDays {
				continue
			}
			r, err := stats.Pearson(xs, ys)
			if errors.Is(err, stats.ErrNoVariance) {
				continue
			}
			if err != nil {
				continue
			}
			r = core.Round2(r)
			setPair(result.Pairs, a, b, r)
			setPair(result.Pairs, b, a, r)
			if strongest == nil || r > strongest.Coefficient {
				strongest = &CorrelatedPair{Categories: [2]string{a, b}, Coefficient: r}
			}
		}
	}
	result.Strongest = strongest
	return result
}

// alignedDailySeries returns both categories' totals over their shared
// days, in chronological order.
func alignedDailySeries(a, b map[time.Time]float64) ([]float64, []float64) {
	var common []time.Time
	for day := range a {
		if _, ok := b[day]; ok {
			common = append(common, day)
		}
	}
	sort.Slice(common, func(i, j int) bool { return common[i].Before(common[j]) })

	xs := make([]float64, len(common))
	ys := make([]float64, len(common))
	for i, day := range common {
		xs[i] = a[day]
		ys[i] = b[day]
	}
	return xs, ys
}

func setPair(pairs map[string]map[string]float64, from, to string, r float64) {
	m, ok := pairs[from]
	if !ok {
		m = make(map[string]float64)
		pairs[from] = m
	}
	m[to] = r
}
