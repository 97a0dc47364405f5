package advisor

import (
	"fmt"
	"sort"
	"time"

	"gastos/internal/core"
)

// Alert levels by usage of the budget, most severe first.
const (
	LevelCritical = "CRÍTICO"
	LevelWarning  = "ADVERTENCIA"
	LevelWatch    = "ATENCIÓN"
	LevelOK       = "BUENO"
)

// Months are evaluated against a fixed 31-day window so projections are
// comparable regardless of the calendar month.
const projectionDays = 31

// projectionFactor is the budget overshoot at which a projection alert
// fires.
const projectionFactor = 1.1

type (
	// Budget caps total and per-category monthly spend. Zero or missing
	// values mean uncapped.
	Budget struct {
		Total      float64            `json:"total"`
		ByCategory map[string]float64 `json:"por_categoria"`
	}

	// Alert reports one budget's usage level.
	Alert struct {
		Scope    string  `json:"ambito"`
		Level    string  `json:"nivel"`
		Severity int     `json:"severidad"`
		Spent    float64 `json:"gastado"`
		Budget   float64 `json:"presupuesto"`
		UsagePct float64 `json:"porcentaje_uso"`
		Message  string  `json:"mensaje"`
	}

	// AlertReport is every alert raised, most severe first.
	AlertReport struct {
		Alerts []Alert `json:"alertas"`
	}
)

// BudgetAlerts grades the current month's spend to date against the total
// budget and any per-category budgets, and raises an extra alert when the
// pace of spending projects past a budget. The current month is the month
// of the ledger's most recent record; earlier months never count against a
// monthly budget. Budgets of zero are skipped. The result always has a
// non-nil alert slice, sorted most severe first.
func BudgetAlerts(ledger core.Ledger, budget Budget) AlertReport {
	alerts := []Alert{}
	month := currentMonth(ledger)

	if budget.Total > 0 {
		spent := month.Total()
		alerts = append(alerts, gradeBudget("total", spent, budget.Total))
		if a, ok := projectionAlert("total", spent, budget.Total, daysElapsed(month)); ok {
			alerts = append(alerts, a)
		}
	}

	aggs := core.AggregateByCategory(month)
	cats := make([]string, 0, len(budget.ByCategory))
	for cat := range budget.ByCategory {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	for _, cat := range cats {
		limit := budget.ByCategory[cat]
		if limit <= 0 {
			continue
		}
		alerts = append(alerts, gradeBudget(cat, aggs[cat].Total, limit))
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Severity < alerts[j].Severity
	})
	return AlertReport{Alerts: alerts}
}

func gradeBudget(scope string, spent, budget float64) Alert {
	usage := spent / budget * 100
	level, severity := LevelOK, 4
	switch {
	case usage >= 100:
		level, severity = LevelCritical, 1
	case usage >= 85:
		level, severity = LevelWarning, 2
	case usage >= 70:
		level, severity = LevelWatch, 3
	}
	return Alert{
		Scope:    scope,
		Level:    level,
		Severity: severity,
		Spent:    core.Round2(spent),
		Budget:   core.Round2(budget),
		UsagePct: core.Round2(usage),
		Message:  fmt.Sprintf("Llevas el %.1f%% del presupuesto de %s", usage, scope),
	}
}

// currentMonth keeps only the records in the month of the ledger's most
// recent entry.
func currentMonth(l core.Ledger) core.Ledger {
	last := l.LastDate()
	if last.IsZero() {
		return nil
	}
	start := time.Date(last.Year(), last.Month(), 1, 0, 0, 0, 0, time.UTC)
	month := core.Ledger{}
	for _, r := range l {
		if !r.Date.Before(start) {
			month = append(month, r)
		}
	}
	return month
}

// daysElapsed counts the calendar days of the month covered so far,
// including days without spend.
func daysElapsed(month core.Ledger) int {
	if len(month) == 0 {
		return 0
	}
	return month.LastDate().Day()
}

// projectionAlert extrapolates the month-to-date pace over a 31-day month
// and alerts when the projection clears the budget with margin.
func projectionAlert(scope string, spent, budget float64, daysPassed int) (Alert, bool) {
	if daysPassed == 0 {
		return Alert{}, false
	}
	projected := spent / float64(daysPassed) * projectionDays
	if projected <= budget*projectionFactor {
		return Alert{}, false
	}
	return Alert{
		Scope:    scope,
		Level:    LevelWarning,
		Severity: 2,
		Spent:    core.Round2(spent),
		Budget:   core.Round2(budget),
		UsagePct: core.Round2(projected / budget * 100),
		Message: fmt.Sprintf("A este ritmo acabarás el mes en %.2f, un %.0f%% del presupuesto de %s",
			projected, projected/budget*100, scope),
	}, true
}
