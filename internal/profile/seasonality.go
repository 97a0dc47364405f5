package profile

import (
	"time"

	"gastos/internal/core"
)

type (
	// WeekdayStats summarizes spending on one day of the week.
	WeekdayStats struct {
		Mean  float64 `json:"promedio"`
		Total float64 `json:"total"`
		Count int     `json:"cantidad"`
	}

	// SeasonalityResult describes the weekly spending rhythm.
	SeasonalityResult struct {
		ByWeekday      map[string]WeekdayStats `json:"por_dia_semana"`
		WeekendDiffPct float64                 `json:"diferencia_fin_semana_pct"`
		CostliestDay   string                  `json:"dia_mas_caro"`
	}
)

var weekdayNames = map[time.Weekday]string{
	time.Monday:    "Lunes",
	time.Tuesday:   "Martes",
	time.Wednesday: "Miércoles",
	time.Thursday:  "Jueves",
	time.Friday:    "Viernes",
	time.Saturday:  "Sábado",
	time.Sunday:    "Domingo",
}

// Seasonality groups the ledger by day of week and compares weekend and
// weekday spending. The costliest day is the weekday name with the highest
// mean spend per record. An empty ledger yields a zero result.
func Seasonality(ledger core.Ledger) SeasonalityResult {
	byDay := make(map[string]WeekdayStats)
	var weekendSum, weekdaySum float64
	var weekendN, weekdayN int

	for _, r := range ledger {
		name := weekdayNames[r.Date.Weekday()]
		s := byDay[name]
		s.Total += r.Amount
		s.Count++
		byDay[name] = s

		if core.IsWeekend(r.Date) {
			weekendSum += r.Amount
			weekendN++
		} else {
			weekdaySum += r.Amount
			weekdayN++
		}
	}
	for name, s := range byDay {
		s.Mean = core.Round2(s.Total / float64(s.Count))
		s.Total = core.Round2(s.Total)
		byDay[name] = s
	}

	var diffPct float64
	if weekendN > 0 && weekdayN > 0 {
		weekendMean := weekendSum / float64(weekendN)
		weekdayMean := weekdaySum / float64(weekdayN)
		if weekdayMean != 0 {
			diffPct = core.Round2((weekendMean - weekdayMean) / weekdayMean * 100)
		}
	}

	costliest := ""
	best := -1.0
	// Fixed iteration order so ties resolve the same way every run.
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := weekdayNames[d]
		if s, ok := byDay[name]; ok && s.Mean > best {
			best = s.Mean
			costliest = name
		}
	}

	return SeasonalityResult{
		ByWeekday:      byDay,
		WeekendDiffPct: diffPct,
		CostliestDay:   costliest,
	}
}
