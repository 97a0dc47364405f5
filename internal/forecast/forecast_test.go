package forecast

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"gastos/internal/core"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestByCategorySkipsSparseCategories(t *testing.T) {
	ledger := core.Ledger{
		{Date: day(2024, 1, 1), Amount: 10, Category: "Comida"},
		{Date: day(2024, 1, 3), Amount: 12, Category: "Comida"},
		{Date: day(2024, 1, 5), Amount: 11, Category: "Comida"},
		{Date: day(2024, 1, 8), Amount: 9, Category: "Comida"},
		{Date: day(2024, 1, 2), Amount: 30, Category: "Transporte"},
		{Date: day(2024, 1, 4), Amount: 25, Category: "Transporte"},
	}
	got, err := ByCategory(context.Background(), ledger, 7)
	if err != nil {
		t.Fatalf("ByCategory: %v", err)
	}
	if _, ok := got["Comida"]; !ok {
		t.Error("Comida missing from forecast")
	}
	if _, ok := got["Transporte"]; ok {
		t.Error("Transporte has only 2 records and must be skipped")
	}
}

func TestByCategoryHorizonAndNonNegativity(t *testing.T) {
	var ledger core.Ledger
	base := day(2024, 3, 1)
	for i := 0; i < 10; i++ {
		ledger = append(ledger, core.Record{
			Date: base.AddDate(0, 0, i), Amount: float64(5 + i%3), Category: "Comida",
		})
	}
	for _, horizon := range []int{1, 7, 30} {
		got, err := ByCategory(context.Background(), ledger, horizon)
		if err != nil {
			t.Fatalf("horizon %d: %v", horizon, err)
		}
		fc := got["Comida"]
		if len(fc.Predictions) != horizon {
			t.Errorf("horizon %d: got %d predictions", horizon, len(fc.Predictions))
		}
		var sum float64
		for _, p := range fc.Predictions {
			if p.Amount < 0 {
				t.Errorf("negative prediction %v on %s", p.Amount, p.Date)
			}
			sum += p.Amount
		}
		if math.Abs(fc.Total-core.Round2(sum)) > 0.011 {
			t.Errorf("total %v does not match prediction sum %v", fc.Total, sum)
		}
	}
}

func TestByCategoryDefaultHorizonIsOneMonth(t *testing.T) {
	var ledger core.Ledger
	base := day(2024, 3, 1)
	for i := 0; i < 6; i++ {
		ledger = append(ledger, core.Record{
			Date: base.AddDate(0, 0, i), Amount: 10, Category: "Comida",
		})
	}
	got, err := ByCategory(context.Background(), ledger, 0)
	if err != nil {
		t.Fatalf("ByCategory: %v", err)
	}
	if n := len(got["Comida"].Predictions); n != 30 {
		t.Errorf("default horizon produced %d predictions, want 30", n)
	}
}

func TestByCategoryEmptyLedger(t *testing.T) {
	var insufficient *core.InsufficientDataError
	if _, err := ByCategory(context.Background(), nil, 7); !errors.As(err, &insufficient) {
		t.Fatalf("want InsufficientDataError, got %v", err)
	}
}

func TestAggregateWeekendUplift(t *testing.T) {
	// Mon Jan 1 and Tue Jan 2, so projections start Wed Jan 3.
	ledger := core.Ledger{
		{Date: day(2024, 1, 1), Amount: 10, Category: "Comida"},
		{Date: day(2024, 1, 2), Amount: 20, Category: "Comida"},
	}
	got, err := Aggregate(ledger, 7)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(got.Daily) != 7 {
		t.Fatalf("got %d days, want 7", len(got.Daily))
	}

	byDate := make(map[string]AggregateDay)
	for _, d := range got.Daily {
		byDate[d.Date] = d
	}
	wed := byDate["2024-01-03"]
	sat := byDate["2024-01-06"]
	if wed.Predicted != 15 {
		t.Errorf("weekday prediction = %v, want 15", wed.Predicted)
	}
	if sat.Predicted != 17.25 {
		t.Errorf("Saturday prediction = %v, want 17.25 (15 * 1.15)", sat.Predicted)
	}
	if sat.Weekday != "Sábado" {
		t.Errorf("Saturday label = %q", sat.Weekday)
	}
	for _, d := range got.Daily {
		if d.Min < 0 {
			t.Errorf("%s: Min = %v, want >= 0", d.Date, d.Min)
		}
		if d.Max < d.Predicted {
			t.Errorf("%s: Max %v below prediction %v", d.Date, d.Max, d.Predicted)
		}
		if d.Week != 1 {
			t.Errorf("%s: week = %d, want 1 within first seven days", d.Date, d.Week)
		}
	}
	if _, ok := got.Weekly[1]; !ok {
		t.Error("weekly summary missing week 1")
	}
}

func TestAggregateWeekBuckets(t *testing.T) {
	ledger := core.Ledger{
		{Date: day(2024, 1, 1), Amount: 10, Category: "Comida"},
		{Date: day(2024, 1, 2), Amount: 20, Category: "Comida"},
	}
	got, err := Aggregate(ledger, 15)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if got.Daily[0].Week != 1 || got.Daily[6].Week != 1 {
		t.Error("days 1..7 must fall in week 1")
	}
	if got.Daily[7].Week != 2 || got.Daily[13].Week != 2 {
		t.Error("days 8..14 must fall in week 2")
	}
	if got.Daily[14].Week != 3 {
		t.Error("day 15 must fall in week 3")
	}
	if len(got.Weekly) != 3 {
		t.Errorf("weekly summaries = %d, want 3", len(got.Weekly))
	}
}

func TestAggregateInsufficientData(t *testing.T) {
	ledger := core.Ledger{{Date: day(2024, 1, 1), Amount: 10, Category: "Comida"}}
	var insufficient *core.InsufficientDataError
	if _, err := Aggregate(ledger, 30); !errors.As(err, &insufficient) {
		t.Fatalf("want InsufficientDataError, got %v", err)
	}
}

func TestCompareOnLinearSeries(t *testing.T) {
	var ledger core.Ledger
	base := day(2024, 1, 1)
	for i := 0; i < 20; i++ {
		ledger = append(ledger, core.Record{
			Date: base.AddDate(0, 0, i), Amount: float64(i + 1), Category: "Comida",
		})
	}
	got, err := Compare(ledger)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	baseline, ok := got.Results["RegresionLineal"]
	if !ok {
		t.Fatal("baseline missing from results")
	}
	if baseline.MAE != 0 {
		t.Errorf("baseline MAE on a perfect line = %v, want 0", baseline.MAE)
	}
	if got.BestR2 != 1 {
		t.Errorf("best R2 = %v, want 1", got.BestR2)
	}
	if got.Best == "" {
		t.Error("best model must be named")
	}
}

func TestCompareTooFewRecords(t *testing.T) {
	ledger := core.Ledger{
		{Date: day(2024, 1, 1), Amount: 10, Category: "A"},
		{Date: day(2024, 1, 2), Amount: 12, Category: "A"},
		{Date: day(2024, 1, 3), Amount: 11, Category: "A"},
		{Date: day(2024, 1, 4), Amount: 13, Category: "A"},
	}
	var insufficient *core.InsufficientDataError
	if _, err := Compare(ledger); !errors.As(err, &insufficient) {
		t.Fatalf("want InsufficientDataError, got %v", err)
	}
}

func TestStrategyFitFailureIsModelFitError(t *testing.T) {
	tests := []struct {
		name     string
		strategy Strategy
		series   []float64
	}{
		{"linear on one point", &linearStrategy{}, []float64{5}},
		{"ar on three points", &arStrategy{}, []float64{5, 6, 7}},
		{"ar on constant series", &arStrategy{}, []float64{5, 5, 5, 5}},
		{"holt on one point", newHoltStrategy(), []float64{5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.strategy.Fit(tt.series)
			if err == nil {
				t.Fatal("Fit succeeded on a series too short to model")
			}
			var fitErr *core.ModelFitError
			if !errors.As(err, &fitErr) {
				t.Fatalf("error is %T, want ModelFitError", err)
			}
			if fitErr.Strategy != tt.strategy.Name() {
				t.Errorf("strategy = %q, want %q", fitErr.Strategy, tt.strategy.Name())
			}
		})
	}
}

func TestStrategiesForecastLength(t *testing.T) {
	series := []float64{5, 7, 6, 8, 9, 7, 10, 11, 9, 12, 13, 11}
	strategies := []Strategy{&linearStrategy{}, &arStrategy{}, newHoltStrategy()}
	for _, s := range strategies {
		if err := s.Fit(series); err != nil {
			t.Fatalf("%s: Fit: %v", s.Name(), err)
		}
		if got := s.Forecast(4); len(got) != 4 {
			t.Errorf("%s: forecast length = %d, want 4", s.Name(), len(got))
		}
	}
}
