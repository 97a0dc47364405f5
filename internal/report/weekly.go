package report

import (
	"sort"
	"time"

	"gastos/internal/core"
)

const topExpenseCount = 5

type (
	// CategoryTotal is one category's share of the week.
	CategoryTotal struct {
		Category string  `json:"categoria"`
		Total    float64 `json:"total"`
	}

	// WeekExpense is one notable expense of the week.
	WeekExpense struct {
		Date     string  `json:"fecha"`
		Amount   float64 `json:"monto"`
		Category string  `json:"categoria"`
	}

	// WeeklySummary recaps the last seven days of the ledger.
	WeeklySummary struct {
		Meta
		From         string          `json:"desde"`
		To           string          `json:"hasta"`
		Total        float64         `json:"total_semana"`
		DailyAverage float64         `json:"promedio_diario"`
		ByCategory   []CategoryTotal `json:"por_categoria"`
		CostliestDay string          `json:"dia_mas_caro"`
		TopExpenses  []WeekExpense   `json:"mayores_gastos"`
	}
)

// Weekly recaps the seven days ending on the ledger's most recent date:
// total and daily average, categories by spend descending, the single
// costliest day and the five largest expenses. An empty ledger yields an
// InsufficientDataError.
func Weekly(ledger core.Ledger) (WeeklySummary, error) {
	if len(ledger) == 0 {
		return WeeklySummary{}, &core.InsufficientDataError{Reason: "empty ledger"}
	}

	to := ledger.LastDate()
	from := to.AddDate(0, 0, -6)

	var week core.Ledger
	for _, r := range ledger {
		if !r.Date.Before(from) && !r.Date.After(to) {
			week = append(week, r)
		}
	}

	out := WeeklySummary{
		Meta: newMeta(time.Now()),
		From: from.Format("2006-01-02"),
		To:   to.Format("2006-01-02"),
	}
	if len(week) == 0 {
		out.ByCategory = []CategoryTotal{}
		out.TopExpenses = []WeekExpense{}
		return out, nil
	}

	out.Total = core.Round2(week.Total())
	out.DailyAverage = core.Round2(week.Total() / 7)

	byCat := make([]CategoryTotal, 0)
	for cat, agg := range core.AggregateByCategory(week) {
		byCat = append(byCat, CategoryTotal{Category: cat, Total: core.Round2(agg.Total)})
	}
	sort.Slice(byCat, func(i, j int) bool {
		if byCat[i].Total != byCat[j].Total {
			return byCat[i].Total > byCat[j].Total
		}
		return byCat[i].Category < byCat[j].Category
	})
	out.ByCategory = byCat

	daily := core.DailyTotals(week)
	costliest := daily[0]
	for _, d := range daily[1:] {
		if d.Total > costliest.Total {
			costliest = d
		}
	}
	out.CostliestDay = costliest.Day.Format("2006-01-02")

	sorted := make(core.Ledger, len(week))
	copy(sorted, week)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Amount > sorted[j].Amount })
	if len(sorted) > topExpenseCount {
		sorted = sorted[:topExpenseCount]
	}
	top := make([]WeekExpense, len(sorted))
	for i, r := range sorted {
		top[i] = WeekExpense{
			Date:     r.Date.Format("2006-01-02"),
			Amount:   core.Round2(r.Amount),
			Category: r.Category,
		}
	}
	out.TopExpenses = top
	return out, nil
}
