// Package advisor turns ledger analysis into actionable guidance: savings
// plans, prioritized tips, budget alerts and an overall financial health
// score.
package advisor

import (
	"fmt"
	"sort"

	"gastos/internal/core"
)

// Feasibility labels for a savings goal.
const (
	GoalFeasible = "SÍ"
	GoalHard     = "DIFÍCIL"
)

// hardReductionPct is the monthly reduction beyond which a goal is
// labeled hard to reach.
const hardReductionPct = 30.0

// suggestionCutPct is the spending cut proposed per suggested category.
const suggestionCutPct = 10.0

type (
	// CutSuggestion proposes trimming one category.
	CutSuggestion struct {
		Category         string  `json:"categoria"`
		MonthlySpend     float64 `json:"gasto_mensual"`
		SuggestedCutPct  float64 `json:"reduccion_sugerida_pct"`
		PotentialSavings float64 `json:"ahorro_potencial"`
		Message          string  `json:"mensaje"`
	}

	// SavingsPlan is the path toward a savings target.
	SavingsPlan struct {
		Target            float64         `json:"objetivo"`
		Months            int             `json:"meses"`
		RequiredMonthly   float64         `json:"ahorro_mensual_requerido"`
		AvgMonthlySpend   float64         `json:"gasto_mensual_promedio"`
		ReductionNeedPct  float64         `json:"reduccion_necesaria_pct"`
		Suggestions       []CutSuggestion `json:"sugerencias"`
		EstimatedFeasible string          `json:"estimado_alcanzable"`
	}
)

// SavingsGoal computes the monthly saving required to hit target within
// months and suggests where to cut. The needed reduction is expressed
// against the average monthly spend; beyond hardReductionPct it is labeled
// hard. Suggestions cover the top five categories by monthly spend, each
// with a flat ten percent cut.
func SavingsGoal(ledger core.Ledger, target float64, months int) (SavingsPlan, error) {
	if target <= 0 {
		return SavingsPlan{}, &core.ValidationError{Field: "objetivo", Reason: "must be positive"}
	}
	if months <= 0 {
		return SavingsPlan{}, &core.ValidationError{Field: "meses", Reason: "must be positive"}
	}
	monthly := core.MonthlyTotals(ledger)
	if len(monthly) == 0 {
		return SavingsPlan{}, &core.InsufficientDataError{Reason: "empty ledger"}
	}

	var spendSum float64
	for _, m := range monthly {
		spendSum += m.Total
	}
	avgMonthly := spendSum / float64(len(monthly))

	required := target / float64(months)
	reductionPct := 0.0
	if avgMonthly > 0 {
		reductionPct = required / avgMonthly * 100
	}

	feasible := GoalFeasible
	if reductionPct > hardReductionPct {
		feasible = GoalHard
	}

	return SavingsPlan{
		Target:            core.Round2(target),
		Months:            months,
		RequiredMonthly:   core.Round2(required),
		AvgMonthlySpend:   core.Round2(avgMonthly),
		ReductionNeedPct:  core.Round2(reductionPct),
		Suggestions:       cutSuggestions(ledger, len(monthly)),
		EstimatedFeasible: feasible,
	}, nil
}

func cutSuggestions(ledger core.Ledger, monthCount int) []CutSuggestion {
	aggs := core.AggregateByCategory(ledger)
	type catSpend struct {
		name    string
		monthly float64
	}
	ranked := make([]catSpend, 0, len(aggs))
	for name, agg := range aggs {
		ranked = append(ranked, catSpend{name, agg.Total / float64(monthCount)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].monthly != ranked[j].monthly {
			return ranked[i].monthly > ranked[j].monthly
		}
		return ranked[i].name < ranked[j].name
	})
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}

	out := make([]CutSuggestion, len(ranked))
	for i, c := range ranked {
		savings := c.monthly * suggestionCutPct / 100
		out[i] = CutSuggestion{
			Category:         c.name,
			MonthlySpend:     core.Round2(c.monthly),
			SuggestedCutPct:  suggestionCutPct,
			PotentialSavings: core.Round2(savings),
			Message: fmt.Sprintf("Reduciendo %s un %.0f%% ahorrarías %.2f al mes",
				c.name, suggestionCutPct, savings),
		}
	}
	return out
}
