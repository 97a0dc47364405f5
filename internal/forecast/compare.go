package forecast

import (
	"math"

	"gastos/internal/core"
	"gastos/internal/stats"
)

// minSeriesForAlternatives gates the heavier strategies: below this many
// training points only the linear baseline competes.
const minSeriesForAlternatives = 10

type (
	// Score is one strategy's held-out accuracy.
	Score struct {
		MAE float64 `json:"mae"`
		R2  float64 `json:"r2"`
	}

	// Comparison ranks the strategies that fitted successfully.
	Comparison struct {
		Results map[string]Score `json:"resultados"`
		Best    string           `json:"mejor_modelo"`
		BestR2  float64          `json:"mejor_r2"`
	}
)

// Compare splits the amount series 80/20 chronologically, fits every
// eligible strategy on the head and scores it on the tail. Strategies that
// fail to fit are dropped from the results. The best strategy is the one
// with the highest R²; if none fit, an InsufficientDataError is returned.
func Compare(ledger core.Ledger) (Comparison, error) {
	series := ledger.Amounts()
	if len(series) < 5 {
		return Comparison{}, &core.InsufficientDataError{Reason: "need at least 5 records to hold out a test set"}
	}

	split := int(0.8 * float64(len(series)))
	train, test := series[:split], series[split:]

	candidates := []Strategy{&linearStrategy{}}
	if len(train) >= minSeriesForAlternatives {
		candidates = append(candidates, &arStrategy{}, newHoltStrategy())
	}

	results := make(map[string]Score)
	best := ""
	bestR2 := math.Inf(-1)
	for _, c := range candidates {
		if err := c.Fit(train); err != nil {
			continue
		}
		pred := c.Forecast(len(test))
		score := Score{
			MAE: core.Round2(stats.MAE(test, pred)),
			R2:  round4(stats.R2(test, pred)),
		}
		results[c.Name()] = score
		if score.R2 > bestR2 {
			best = c.Name()
			bestR2 = score.R2
		}
	}
	if len(results) == 0 {
		return Comparison{}, &core.InsufficientDataError{Reason: "no strategy could be fitted"}
	}

	return Comparison{Results: results, Best: best, BestR2: bestR2}, nil
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
