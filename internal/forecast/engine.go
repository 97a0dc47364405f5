package forecast

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"gastos/internal/core"
	"gastos/internal/stats"
)

const (
	// DefaultCategoryHorizon is the per-category projection window in days.
	DefaultCategoryHorizon = 30
	// DefaultAggregateHorizon is the whole-ledger projection window in days.
	DefaultAggregateHorizon = 30

	// weekendFactor scales aggregate predictions on Saturdays and Sundays.
	weekendFactor = 1.15

	// minCategoryRecords is the fewest records a category needs before a
	// per-category model is worth fitting.
	minCategoryRecords = 3
)

type (
	// DailyPrediction is one projected day of spend.
	DailyPrediction struct {
		Date   string  `json:"fecha"`
		Amount float64 `json:"monto"`
	}

	// CategoryForecast is the projection for a single category.
	CategoryForecast struct {
		Predictions  []DailyPrediction `json:"predicciones"`
		Total        float64           `json:"total"`
		DailyAverage float64           `json:"promedio_diario"`
	}

	// AggregateDay is one projected day of total spend with its
	// uncertainty band.
	AggregateDay struct {
		Date      string  `json:"fecha"`
		Weekday   string  `json:"dia_semana"`
		Week      int     `json:"semana"`
		Predicted float64 `json:"prediccion"`
		Min       float64 `json:"min"`
		Max       float64 `json:"max"`
	}

	// WeekSummary totals and averages one projected week.
	WeekSummary struct {
		Total float64 `json:"total"`
		Mean  float64 `json:"promedio"`
	}

	// AggregateForecast is the whole-ledger projection.
	AggregateForecast struct {
		Daily        []AggregateDay      `json:"predicciones_diarias"`
		MonthTotal   float64             `json:"total_estimado"`
		DailyAverage float64             `json:"promedio_diario"`
		Weekly       map[int]WeekSummary `json:"resumen_semanal"`
	}
)

var spanishWeekdays = map[time.Weekday]string{
	time.Monday:    "Lunes",
	time.Tuesday:   "Martes",
	time.Wednesday: "Miércoles",
	time.Thursday:  "Jueves",
	time.Friday:    "Viernes",
	time.Saturday:  "Sábado",
	time.Sunday:    "Domingo",
}

// ByCategory fits one model per category on day-of-week and day-of-month
// features and projects the next horizon days. Categories with fewer than
// minCategoryRecords records are skipped. Categories are fitted
// concurrently; the result map is keyed by category name.
func ByCategory(ctx context.Context, ledger core.Ledger, horizon int) (map[string]CategoryForecast, error) {
	if horizon <= 0 {
		horizon = DefaultCategoryHorizon
	}
	if len(ledger) == 0 {
		return nil, &core.InsufficientDataError{Reason: "empty ledger"}
	}

	out := make(map[string]CategoryForecast)
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for _, category := range ledger.Categories() {
		records := ledger.ByCategory(category)
		if len(records) < minCategoryRecords {
			continue
		}
		category := category
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fc := forecastCategory(records, horizon)
			mu.Lock()
			out[category] = fc
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, &core.InsufficientDataError{Reason: "no category has enough records"}
	}
	return out, nil
}

func forecastCategory(records core.Ledger, horizon int) CategoryForecast {
	x1 := make([]float64, len(records)) // day of week, Monday = 0
	x2 := make([]float64, len(records)) // day of month
	ys := make([]float64, len(records))
	for i, r := range records {
		x1[i] = float64((int(r.Date.Weekday()) + 6) % 7)
		x2[i] = float64(r.Date.Day())
		ys[i] = r.Amount
	}
	b0, b1, b2 := fitTwoFeatures(x1, x2, ys)

	start := records.LastDate().AddDate(0, 0, 1)
	preds := make([]DailyPrediction, horizon)
	var total float64
	for i := 0; i < horizon; i++ {
		d := start.AddDate(0, 0, i)
		dow := float64((int(d.Weekday()) + 6) % 7)
		dom := float64(d.Day())
		amount := b0 + b1*dow + b2*dom
		if amount < 0 {
			amount = 0
		}
		amount = core.Round2(amount)
		preds[i] = DailyPrediction{Date: d.Format("2006-01-02"), Amount: amount}
		total += amount
	}
	return CategoryForecast{
		Predictions:  preds,
		Total:        core.Round2(total),
		DailyAverage: core.Round2(total / float64(horizon)),
	}
}

// fitTwoFeatures solves y = b0 + b1*x1 + b2*x2 by least squares via the
// normal equations. A singular system falls back to the plain mean.
func fitTwoFeatures(x1, x2, ys []float64) (b0, b1, b2 float64) {
	n := float64(len(ys))
	var s1, s2, sy, s11, s22, s12, s1y, s2y float64
	for i := range ys {
		s1 += x1[i]
		s2 += x2[i]
		sy += ys[i]
		s11 += x1[i] * x1[i]
		s22 += x2[i] * x2[i]
		s12 += x1[i] * x2[i]
		s1y += x1[i] * ys[i]
		s2y += x2[i] * ys[i]
	}

	m := [3][4]float64{
		{n, s1, s2, sy},
		{s1, s11, s12, s1y},
		{s2, s12, s22, s2y},
	}
	sol, ok := solve3(m)
	if !ok {
		return stats.Mean(ys), 0, 0
	}
	return sol[0], sol[1], sol[2]
}

// solve3 runs Gaussian elimination with partial pivoting on a 3x4
// augmented matrix.
func solve3(m [3][4]float64) ([3]float64, bool) {
	for col := 0; col < 3; col++ {
		pivot := col
		for row := col + 1; row < 3; row++ {
			if math.Abs(m[row][col]) > math.Abs(m[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(m[pivot][col]) < 1e-12 {
			return [3]float64{}, false
		}
		m[col], m[pivot] = m[pivot], m[col]
		for row := 0; row < 3; row++ {
			if row == col {
				continue
			}
			factor := m[row][col] / m[col][col]
			for k := col; k < 4; k++ {
				m[row][k] -= factor * m[col][k]
			}
		}
	}
	var sol [3]float64
	for i := 0; i < 3; i++ {
		sol[i] = m[i][3] / m[i][i]
	}
	return sol, true
}

// Aggregate projects total daily spend for the next horizon days from the
// ledger's daily mean, widening each day into a one-deviation band and
// scaling weekend days up by weekendFactor. Days are bucketed into weeks
// of seven starting at week 1.
func Aggregate(ledger core.Ledger, horizon int) (AggregateForecast, error) {
	if horizon <= 0 {
		horizon = DefaultAggregateHorizon
	}
	daily := core.DailyTotals(ledger)
	if len(daily) < 2 {
		return AggregateForecast{}, &core.InsufficientDataError{Reason: "need at least 2 distinct days"}
	}

	totals := make([]float64, len(daily))
	for i, d := range daily {
		totals[i] = d.Total
	}
	mean := stats.Mean(totals)
	sd := stats.StdSample(totals)

	start := ledger.LastDate().AddDate(0, 0, 1)
	days := make([]AggregateDay, horizon)
	weekly := make(map[int]WeekSummary)
	weekCounts := make(map[int]int)
	var total float64
	for i := 0; i < horizon; i++ {
		d := start.AddDate(0, 0, i)
		predicted := mean
		if core.IsWeekend(d) {
			predicted *= weekendFactor
		}
		lo := predicted - sd
		if lo < 0 {
			lo = 0
		}
		week := i/7 + 1
		days[i] = AggregateDay{
			Date:      d.Format("2006-01-02"),
			Weekday:   spanishWeekdays[d.Weekday()],
			Week:      week,
			Predicted: core.Round2(predicted),
			Min:       core.Round2(lo),
			Max:       core.Round2(predicted + sd),
		}
		total += predicted

		ws := weekly[week]
		ws.Total += predicted
		weekly[week] = ws
		weekCounts[week]++
	}
	for week, ws := range weekly {
		ws.Mean = core.Round2(ws.Total / float64(weekCounts[week]))
		ws.Total = core.Round2(ws.Total)
		weekly[week] = ws
	}

	return AggregateForecast{
		Daily:        days,
		MonthTotal:   core.Round2(total),
		DailyAverage: core.Round2(total / float64(horizon)),
		Weekly:       weekly,
	}, nil
}
