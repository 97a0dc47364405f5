package profile

import (
	"gastos/internal/core"
)

// Spending direction labels for month-over-month comparison.
const (
	TrendUp   = "AUMENTO"
	TrendDown = "DISMINUCIÓN"
)

type (
	// CategoryChange compares one category across two months.
	CategoryChange struct {
		Current   float64 `json:"actual"`
		Previous  float64 `json:"anterior"`
		ChangePct float64 `json:"cambio_porcentual"`
	}

	// TemporalResult compares the two most recent months of the ledger.
	TemporalResult struct {
		CurrentMonth  string                    `json:"mes_actual"`
		PreviousMonth string                    `json:"mes_anterior"`
		CurrentTotal  float64                   `json:"total_actual"`
		PreviousTotal float64                   `json:"total_anterior"`
		CurrentCount  int                       `json:"transacciones_actual"`
		PreviousCount int                       `json:"transacciones_anterior"`
		ChangePct     float64                   `json:"cambio_porcentual"`
		Trend         string                    `json:"tendencia"`
		ByCategory    map[string]CategoryChange `json:"por_categoria"`
	}
)

// TemporalComparison contrasts the most recent month against the one
// before it, overall and per category. Per-category percentages divide by
// at least 1 so a category absent last month still yields a finite change.
// Fewer than two distinct months is an InsufficientDataError.
func TemporalComparison(ledger core.Ledger) (TemporalResult, error) {
	months := core.MonthlyTotals(ledger)
	if len(months) < 2 {
		return TemporalResult{}, &core.InsufficientDataError{Reason: "need at least 2 months of data"}
	}
	current := months[len(months)-1]
	previous := months[len(months)-2]

	changePct := 0.0
	if previous.Total != 0 {
		changePct = (current.Total - previous.Total) / previous.Total * 100
	}
	trend := TrendDown
	if current.Total > previous.Total {
		trend = TrendUp
	}

	currentByCat := monthCategoryTotals(ledger, current.Month)
	previousByCat := monthCategoryTotals(ledger, previous.Month)
	byCategory := make(map[string]CategoryChange)
	for cat, cur := range currentByCat {
		prev := previousByCat[cat]
		denom := prev
		if denom < 1 {
			denom = 1
		}
		byCategory[cat] = CategoryChange{
			Current:   core.Round2(cur),
			Previous:  core.Round2(prev),
			ChangePct: core.Round2((cur - prev) / denom * 100),
		}
	}

	return TemporalResult{
		CurrentMonth:  current.Month,
		PreviousMonth: previous.Month,
		CurrentTotal:  core.Round2(current.Total),
		PreviousTotal: core.Round2(previous.Total),
		CurrentCount:  current.Count,
		PreviousCount: previous.Count,
		ChangePct:     core.Round2(changePct),
		Trend:         trend,
		ByCategory:    byCategory,
	}, nil
}

func monthCategoryTotals(ledger core.Ledger, month string) map[string]float64 {
	out := make(map[string]float64)
	for _, r := range ledger {
		if core.MonthKey(r.Date) == month {
			out[r.Category] += r.Amount
		}
	}
	return out
}
