package advisor

import (
	"fmt"
	"sort"

	"gastos/internal/core"
	"gastos/internal/stats"
)

// Tip priorities, most urgent first.
const (
	PriorityHigh   = "ALTA"
	PriorityMedium = "MEDIA"
	PriorityLow    = "BAJA"
)

const (
	concentrationSharePct = 40.0
	smallExpenseSharePct  = 15.0
	weekendSharePct       = 40.0
	trendRiseFactor       = 1.2
	minTrendMonths        = 3
	minCategories         = 3
)

// Tip is one piece of advice with its urgency, a concrete action and the
// estimated impact of taking it.
type Tip struct {
	Priority string `json:"prioridad"`
	Title    string `json:"titulo"`
	Message  string `json:"mensaje"`
	Action   string `json:"accion"`
	Impact   string `json:"impacto_potencial"`
}

var priorityRank = map[string]int{PriorityHigh: 0, PriorityMedium: 1, PriorityLow: 2}

// Tips evaluates five independent rules over the ledger and returns the
// ones that fire, ordered most urgent first. A ledger always produces a
// non-nil slice; an unremarkable ledger may produce an empty one.
func Tips(ledger core.Ledger) []Tip {
	tips := []Tip{}
	if len(ledger) == 0 {
		return tips
	}

	total := ledger.Total()
	aggs := core.AggregateByCategory(ledger)

	// Rule 1: one category holding more than 40% of the total.
	topCat, topTotal := "", 0.0
	for name, agg := range aggs {
		if agg.Total > topTotal || (agg.Total == topTotal && name < topCat) {
			topCat, topTotal = name, agg.Total
		}
	}
	if total > 0 && topTotal/total*100 > concentrationSharePct {
		tips = append(tips, Tip{
			Priority: PriorityHigh,
			Title:    "Gasto concentrado",
			Message: fmt.Sprintf("%s concentra el %.1f%% de tus gastos.",
				topCat, topTotal/total*100),
			Action: fmt.Sprintf("Revisa los gastos de %s y fija un tope mensual para la categoría.", topCat),
			Impact: fmt.Sprintf("Recortar un 10%% ahorraría %.2f.", core.Round2(topTotal*0.10)),
		})
	}

	// Rule 2: the bottom quartile of amounts adding up to a meaningful
	// share of the total.
	amounts := ledger.Amounts()
	q1 := stats.Quantile(amounts, 0.25)
	var smallSum float64
	var smallN int
	for _, a := range amounts {
		if a <= q1 {
			smallSum += a
			smallN++
		}
	}
	if total > 0 && smallSum/total*100 > smallExpenseSharePct {
		tips = append(tips, Tip{
			Priority: PriorityMedium,
			Title:    "Gastos hormiga",
			Message: fmt.Sprintf("Tus %d gastos más pequeños suman %.2f, el %.1f%% del total.",
				smallN, core.Round2(smallSum), smallSum/total*100),
			Action: "Agrupa las compras pequeñas recurrentes y elimina las que no uses.",
			Impact: fmt.Sprintf("Eliminar la mitad ahorraría %.2f.", core.Round2(smallSum/2)),
		})
	}

	// Rule 3: weekends taking more than 40% of the total spend.
	var weekendSum float64
	for _, r := range ledger {
		if core.IsWeekend(r.Date) {
			weekendSum += r.Amount
		}
	}
	if total > 0 && weekendSum/total*100 > weekendSharePct {
		tips = append(tips, Tip{
			Priority: PriorityMedium,
			Title:    "Fines de semana caros",
			Message: fmt.Sprintf("El fin de semana se lleva el %.1f%% de tu gasto.",
				weekendSum/total*100),
			Action: "Planifica las salidas de fin de semana con un presupuesto cerrado.",
			Impact: fmt.Sprintf("Reducir un 20%% ahorraría %.2f.", core.Round2(weekendSum*0.20)),
		})
	}

	// Rule 4: the last two months averaging more than 1.2x the first two.
	if months := core.MonthlyTotals(ledger); len(months) >= minTrendMonths {
		n := len(months)
		recent := (months[n-1].Total + months[n-2].Total) / 2
		earlier := (months[0].Total + months[1].Total) / 2
		if earlier > 0 && recent > earlier*trendRiseFactor {
			tips = append(tips, Tip{
				Priority: PriorityHigh,
				Title:    "Gasto mensual en alza",
				Message: fmt.Sprintf("Tus últimos meses promedian %.2f frente a %.2f al principio, un %.1f%% más.",
					core.Round2(recent), core.Round2(earlier), (recent-earlier)/earlier*100),
				Action: "Compara los dos últimos meses categoría a categoría y localiza la subida.",
				Impact: fmt.Sprintf("Volver al nivel inicial ahorraría %.2f al mes.", core.Round2(recent-earlier)),
			})
		}
	}

	// Rule 5: too few categories to see where the money goes.
	if len(aggs) < minCategories {
		tips = append(tips, Tip{
			Priority: PriorityLow,
			Title:    "Pocas categorías",
			Message:  "Clasifica tus gastos en más categorías para ver mejor a dónde va tu dinero.",
			Action:   "Divide las categorías genéricas en al menos tres específicas.",
			Impact:   "Mejor visibilidad para encontrar recortes.",
		})
	}

	sort.SliceStable(tips, func(i, j int) bool {
		return priorityRank[tips[i].Priority] < priorityRank[tips[j].Priority]
	})
	return tips
}
