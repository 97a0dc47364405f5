package profile

import (
	"gastos/internal/core"
	"gastos/internal/stats"
)

// Overall weekly-trend labels.
const (
	TrendRising  = "AUMENTANDO"
	TrendFalling = "DISMINUYENDO"
	TrendStable  = "ESTABLE"
)

// fallingSlope is the weekly slope below which spending counts as
// falling. Between fallingSlope and zero the series reads as stable, so
// small negative drifts do not trigger the falling label.
const fallingSlope = -10.0

type (
	// WeekPoint is one ISO week's spend.
	WeekPoint struct {
		Year  int     `json:"anio"`
		Week  int     `json:"semana"`
		Total float64 `json:"total"`
	}

	// TrendResult classifies the spending slope across ISO weeks.
	TrendResult struct {
		Trend         string      `json:"tendencia_general"`
		Slope         float64     `json:"pendiente"`
		Advice        string      `json:"consejo"`
		Weeks         []WeekPoint `json:"semanas"`
		WeekChanges   []float64   `json:"cambios_semanales"`
		MovingAverage []float64   `json:"media_movil"`
		WeeklyAverage float64     `json:"gasto_promedio_semanal"`
	}
)

// Trend fits a line through the weekly totals and classifies its slope:
// any positive slope is rising, a slope below fallingSlope is falling,
// everything in between is stable. Also reports week-over-week percentage
// changes and a 3-week moving average whose first two entries are the raw
// totals. Fewer than two weeks is an InsufficientDataError.
func Trend(ledger core.Ledger) (TrendResult, error) {
	weekly := core.WeeklyTotals(ledger)
	if len(weekly) < 2 {
		return TrendResult{}, &core.InsufficientDataError{Reason: "need at least 2 weeks of data"}
	}

	totals := make([]float64, len(weekly))
	xs := make([]float64, len(weekly))
	weeks := make([]WeekPoint, len(weekly))
	for i, w := range weekly {
		totals[i] = w.Total
		xs[i] = float64(i)
		weeks[i] = WeekPoint{Year: w.Year, Week: w.Week, Total: core.Round2(w.Total)}
	}

	slope, _ := stats.LinearFit(xs, totals)
	trend, advice := classifySlope(slope)

	changes := make([]float64, 0, len(totals)-1)
	for i := 1; i < len(totals); i++ {
		prev := totals[i-1]
		if prev == 0 {
			changes = append(changes, 0)
			continue
		}
		changes = append(changes, core.Round2((totals[i]-prev)/prev*100))
	}

	moving := make([]float64, len(totals))
	for i := range totals {
		if i < 2 {
			moving[i] = core.Round2(totals[i])
			continue
		}
		moving[i] = core.Round2((totals[i] + totals[i-1] + totals[i-2]) / 3)
	}

	return TrendResult{
		Trend:         trend,
		Slope:         core.Round2(slope),
		Advice:        advice,
		Weeks:         weeks,
		WeekChanges:   changes,
		MovingAverage: moving,
		WeeklyAverage: core.Round2(stats.Mean(totals)),
	}, nil
}

func classifySlope(slope float64) (trend, advice string) {
	switch {
	case slope > 0:
		return TrendRising, "Tus gastos están aumentando. Considera revisar tu presupuesto."
	case slope < fallingSlope:
		return TrendFalling, "¡Buen trabajo! Tus gastos están disminuyendo."
	default:
		return TrendStable, "Tus gastos se mantienen estables."
	}
}
