package report

import (
	"context"
	"testing"
	"time"

	"gastos/internal/advisor"
	"gastos/internal/core"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func richLedger() core.Ledger {
	var l core.Ledger
	base := day(2024, 1, 1)
	cats := []string{"Comida", "Transporte", "Ocio"}
	for i := 0; i < 45; i++ {
		l = append(l, core.Record{
			Date:     base.AddDate(0, 0, i),
			Amount:   float64(10 + i%7),
			Category: cats[i%len(cats)],
		})
	}
	return l
}

func TestPredictionsCompleteLedger(t *testing.T) {
	got := Predictions(context.Background(), richLedger())
	if got.ID == "" || got.GeneratedAt == "" {
		t.Error("report meta missing")
	}
	if got.ByCategory == nil {
		t.Error("category forecasts missing")
	}
	if got.Monthly == nil {
		t.Error("monthly forecast missing")
	}
	if got.Anomalies == nil {
		t.Error("anomaly section missing")
	}
	if got.Models == nil {
		t.Error("model comparison missing")
	}
	if len(got.Errors) != 0 {
		t.Errorf("unexpected section errors: %v", got.Errors)
	}
}

func TestPredictionsPartialOnSparseLedger(t *testing.T) {
	ledger := core.Ledger{
		{Date: day(2024, 1, 1), Amount: 10, Category: "Comida"},
		{Date: day(2024, 1, 2), Amount: 12, Category: "Comida"},
		{Date: day(2024, 1, 3), Amount: 11, Category: "Comida"},
	}
	got := Predictions(context.Background(), ledger)
	// Three records forecast per category but cannot hold out a test set.
	if got.ByCategory == nil {
		t.Error("category forecast should still be present")
	}
	if got.Models != nil {
		t.Error("model comparison should have failed on 3 records")
	}
	if _, ok := got.Errors["comparacion_modelos"]; !ok {
		t.Errorf("missing section error marker, got %v", got.Errors)
	}
}

func TestStatisticsCompleteLedger(t *testing.T) {
	got := Statistics(context.Background(), richLedger())
	if got.Correlations == nil || got.Seasonality == nil || got.Temporal == nil ||
		got.Clusters == nil || got.Trend == nil || got.Outliers == nil {
		t.Errorf("incomplete statistical report: %+v, errors %v", got, got.Errors)
	}
}

func TestSavingsReport(t *testing.T) {
	got := Savings(context.Background(), richLedger(), SavingsOptions{
		Target:      600,
		TargetMonth: 6,
		Budget:      advisor.Budget{Total: 400},
	})
	if got.Plan == nil {
		t.Error("savings plan missing")
	}
	if got.Tips == nil {
		t.Error("tips must be a non-nil slice")
	}
	if len(got.Alerts.Alerts) == 0 {
		t.Error("budget alerts missing")
	}
	if got.Health.Classification == "" {
		t.Error("health classification missing")
	}
}

func TestSavingsReportSkipsPlanWithoutTarget(t *testing.T) {
	got := Savings(context.Background(), richLedger(), SavingsOptions{})
	if got.Plan != nil {
		t.Error("plan must be skipped when no target is given")
	}
	if _, ok := got.Errors["plan_ahorro"]; ok {
		t.Error("skipped plan must not be recorded as an error")
	}
}

func TestWeekly(t *testing.T) {
	ledger := core.Ledger{
		{Date: day(2024, 1, 1), Amount: 100, Category: "Alquiler"}, // outside window
		{Date: day(2024, 1, 10), Amount: 30, Category: "Comida"},
		{Date: day(2024, 1, 12), Amount: 50, Category: "Ocio"},
		{Date: day(2024, 1, 14), Amount: 20, Category: "Comida"},
		{Date: day(2024, 1, 16), Amount: 40, Category: "Comida"},
	}
	got, err := Weekly(ledger)
	if err != nil {
		t.Fatalf("Weekly: %v", err)
	}
	if got.From != "2024-01-10" || got.To != "2024-01-16" {
		t.Errorf("window = %s..%s", got.From, got.To)
	}
	if got.Total != 140 {
		t.Errorf("total = %v, want 140 (record outside the window included?)", got.Total)
	}
	if got.ByCategory[0].Category != "Comida" || got.ByCategory[0].Total != 90 {
		t.Errorf("top category = %+v", got.ByCategory[0])
	}
	if got.CostliestDay != "2024-01-12" {
		t.Errorf("costliest day = %s, want 2024-01-12", got.CostliestDay)
	}
	if len(got.TopExpenses) != 4 {
		t.Errorf("top expenses = %d, want 4", len(got.TopExpenses))
	}
	if got.TopExpenses[0].Amount != 50 {
		t.Errorf("largest expense = %v, want 50", got.TopExpenses[0].Amount)
	}
}

func TestWeeklyEmptyLedger(t *testing.T) {
	if _, err := Weekly(nil); err == nil {
		t.Fatal("want error on empty ledger")
	}
}
