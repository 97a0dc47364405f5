// Package core holds the normalized expense ledger and the grouping
// helpers shared by every analysis component. All aggregates are derived
// views: they are recomputed on demand and never persisted.
package core

import (
	"sort"
	"time"
)

type (
	// CategoryAggregate summarizes one category's spend.
	CategoryAggregate struct {
		Total float64
		Mean  float64
		Count int
		Min   float64
		Max   float64
	}

	// DayTotal is the summed spend of one calendar day.
	DayTotal struct {
		Day   time.Time
		Total float64
	}

	// MonthTotal is the summed spend of one calendar month ("2006-01" key).
	MonthTotal struct {
		Month string
		Total float64
		Count int
		Mean  float64
	}

	// WeekTotal is the summed spend of one ISO week.
	WeekTotal struct {
		Year  int
		Week  int
		Total float64
	}
)

// AggregateByCategory computes per-category totals, means and extrema.
func AggregateByCategory(l Ledger) map[string]CategoryAggregate {
	out := make(map[string]CategoryAggregate)
	for _, r := range l {
		agg, ok := out[r.Category]
		if !ok {
			agg = CategoryAggregate{Min: r.Amount, Max: r.Amount}
		}
		agg.Total += r.Amount
		agg.Count++
		if r.Amount < agg.Min {
			agg.Min = r.Amount
		}
		if r.Amount > agg.Max {
			agg.Max = r.Amount
		}
		out[r.Category] = agg
	}
	for cat, agg := range out {
		agg.Mean = agg.Total / float64(agg.Count)
		out[cat] = agg
	}
	return out
}

// DailyTotals groups the ledger by calendar day, ascending.
func DailyTotals(l Ledger) []DayTotal {
	byDay := make(map[time.Time]float64)
	for _, r := range l {
		byDay[r.Date] += r.Amount
	}
	out := make([]DayTotal, 0, len(byDay))
	for day, total := range byDay {
		out = append(out, DayTotal{Day: day, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}

// MonthKey formats a date as its "2006-01" month bucket.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// MonthlyTotals groups the ledger by calendar month, ascending by month key.
func MonthlyTotals(l Ledger) []MonthTotal {
	type acc struct {
		total float64
		count int
	}
	byMonth := make(map[string]*acc)
	for _, r := range l {
		key := MonthKey(r.Date)
		a, ok := byMonth[key]
		if !ok {
			a = &acc{}
			byMonth[key] = a
		}
		a.total += r.Amount
		a.count++
	}
	out := make([]MonthTotal, 0, len(byMonth))
	for key, a := range byMonth {
		out = append(out, MonthTotal{
			Month: key,
			Total: a.total,
			Count: a.count,
			Mean:  a.total / float64(a.count),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// WeeklyTotals groups the ledger by ISO week, ascending.
func WeeklyTotals(l Ledger) []WeekTotal {
	type key struct{ year, week int }
	byWeek := make(map[key]float64)
	for _, r := range l {
		y, w := r.Date.ISOWeek()
		byWeek[key{y, w}] += r.Amount
	}
	out := make([]WeekTotal, 0, len(byWeek))
	for k, total := range byWeek {
		out = append(out, WeekTotal{Year: k.year, Week: k.week, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Week < out[j].Week
	})
	return out
}

// IsWeekend reports whether a date falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
