package advisor

import (
	"fmt"

	"gastos/internal/core"
	"gastos/internal/stats"
)

// Health score classifications.
const (
	HealthExcellent = "EXCELENTE"
	HealthGood      = "BUENO"
	HealthFair      = "ACEPTABLE"
	HealthPoor      = "NECESITA MEJORA"
)

// HealthScore is the 0..100 financial health grade with the factors that
// moved it.
type HealthScore struct {
	Score          float64  `json:"puntuacion"`
	Classification string   `json:"clasificacion"`
	Factors        []string `json:"factores"`
}

// Health grades the ledger starting from 100 and adjusting for budget
// overrun, month-to-month variability, category diversification, detected
// anomalies and the multi-month direction of spend. The score is clamped
// to [0, 100]. A zero monthly budget skips the budget factor entirely.
func Health(ledger core.Ledger, monthlyBudget float64, anomalyCount int) HealthScore {
	score := 100.0
	factors := []string{}

	months := core.MonthlyTotals(ledger)

	// Budget overrun, up to -30.
	if monthlyBudget > 0 && len(months) > 0 {
		var sum float64
		for _, m := range months {
			sum += m.Total
		}
		ratio := (sum / float64(len(months))) / monthlyBudget
		if ratio > 1 {
			penalty := (ratio - 1) * 30
			if penalty > 30 {
				penalty = 30
			}
			score -= penalty
			factors = append(factors, fmt.Sprintf("Gasto promedio %.0f%% por encima del presupuesto", (ratio-1)*100))
		}
	}

	// Month-to-month variability, up to -15 when the coefficient of
	// variation exceeds 0.5.
	if len(months) >= 2 {
		totals := make([]float64, len(months))
		for i, m := range months {
			totals[i] = m.Total
		}
		mean := stats.Mean(totals)
		if mean > 0 {
			cv := stats.StdSample(totals) / mean
			if cv > 0.5 {
				penalty := cv * 10
				if penalty > 15 {
					penalty = 15
				}
				score -= penalty
				factors = append(factors, "Gasto mensual muy variable")
			}
		}
	}

	// Diversification bonus.
	switch n := len(ledger.Categories()); {
	case n >= 5:
		score += 10
		factors = append(factors, "Gastos bien diversificados")
	case n >= 3:
		score += 5
		factors = append(factors, "Diversificación razonable")
	}

	// Anomalies, up to -15.
	if anomalyCount > 0 {
		penalty := float64(2 * anomalyCount)
		if penalty > 15 {
			penalty = 15
		}
		score -= penalty
		factors = append(factors, fmt.Sprintf("%d gastos anómalos detectados", anomalyCount))
	}

	// Multi-month direction, only when there is enough history to call it.
	// The last two months are averaged against the first two so a single
	// odd month does not swing the score.
	if n := len(months); n >= 3 {
		recent := (months[n-1].Total + months[n-2].Total) / 2
		earlier := (months[0].Total + months[1].Total) / 2
		switch {
		case earlier > 0 && recent > earlier*1.2:
			score -= 15
			factors = append(factors, "Tendencia de gasto al alza")
		case earlier > 0 && recent < earlier*0.8:
			score += 15
			factors = append(factors, "Tendencia de gasto a la baja")
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return HealthScore{
		Score:          core.Round2(score),
		Classification: classifyHealth(score),
		Factors:        factors,
	}
}

func classifyHealth(score float64) string {
	switch {
	case score >= 80:
		return HealthExcellent
	case score >= 60:
		return HealthGood
	case score >= 40:
		return HealthFair
	default:
		return HealthPoor
	}
}
