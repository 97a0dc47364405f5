// Package anomaly flags atypical transactions in a ledger using two
// independent passes over the amount column: a standardized-deviation pass
// and a density pass that isolates the sparsest amounts. Records flagged by
// both passes are reported once, tagged with the method that found them
// first.
package anomaly

import (
	"fmt"
	"math"
	"sort"

	"gastos/internal/core"
	"gastos/internal/stats"
)

// DefaultZScoreThreshold is the deviation (in σ) beyond which a record is
// flagged by the z-score pass.
const DefaultZScoreThreshold = 2.5

// densityShare is the fraction of the ledger flagged by the density pass.
const densityShare = 0.10

type (
	// Anomaly is one flagged record.
	Anomaly struct {
		Date     string  `json:"fecha"`
		Amount   float64 `json:"monto"`
		Category string  `json:"categoria"`
		Method   string  `json:"metodo"`
		Reason   string  `json:"razon"`
	}

	// Result is the combined, deduplicated outcome of both passes.
	Result struct {
		Count      int       `json:"cantidad"`
		Anomalies  []Anomaly `json:"anomalias"`
		Percentage float64   `json:"porcentaje"`
	}
)

// Detect runs both passes and merges their findings on the (date, amount)
// key. Ledgers with fewer than two records yield zero anomalies with
// percentage 0 rather than a division error. Detection is deterministic:
// the same ledger always produces the same flagged set.
func Detect(ledger core.Ledger, zThreshold float64) Result {
	if zThreshold <= 0 {
		zThreshold = DefaultZScoreThreshold
	}
	if len(ledger) < 2 {
		return Result{Anomalies: []Anomaly{}}
	}

	amounts := ledger.Amounts()
	type key struct {
		date   string
		amount float64
	}
	seen := make(map[key]struct{})
	var out []Anomaly

	add := func(r core.Record, method, reason string) {
		k := key{r.Date.Format("2006-01-02"), r.Amount}
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		out = append(out, Anomaly{
			Date:     k.date,
			Amount:   core.Round2(r.Amount),
			Category: r.Category,
			Method:   method,
			Reason:   reason,
		})
	}

	// Pass 1: standardized deviation from the mean.
	zs := stats.ZScores(amounts)
	for i, z := range zs {
		if math.Abs(z) > zThreshold {
			add(ledger[i], "Z-Score", fmt.Sprintf("Desviación %.2fσ del promedio", math.Abs(z)))
		}
	}

	// Pass 2: density scoring, flagging the top ~10% most isolated amounts.
	for _, idx := range sparsestIndices(amounts, densityShare) {
		add(ledger[idx], "Densidad", "Patrón anómalo detectado")
	}

	if out == nil {
		out = []Anomaly{}
	}
	pct := float64(len(out)) / float64(len(ledger)) * 100
	return Result{
		Count:      len(out),
		Anomalies:  out,
		Percentage: core.Round2(pct),
	}
}

// sparsestIndices ranks every amount by its mean distance to the k nearest
// other amounts and returns the indices of the top share, highest score
// first. Ties break on input order so the result is stable.
func sparsestIndices(amounts []float64, share float64) []int {
	n := len(amounts)
	flag := int(math.Round(float64(n) * share))
	if flag < 1 {
		flag = 1
	}

	k := 5
	if k > n-1 {
		k = n - 1
	}

	scores := make([]float64, n)
	dists := make([]float64, 0, n-1)
	for i, x := range amounts {
		dists = dists[:0]
		for j, y := range amounts {
			if i == j {
				continue
			}
			dists = append(dists, math.Abs(x-y))
		}
		sort.Float64s(dists)
		var sum float64
		for _, d := range dists[:k] {
			sum += d
		}
		scores[i] = sum / float64(k)
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	return order[:flag]
}
