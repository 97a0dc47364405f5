package core

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleLedger() Ledger {
	return Ledger{
		{Date: day(2024, 1, 1), Amount: 100, Category: "Comida"},
		{Date: day(2024, 1, 2), Amount: 20, Category: "Transporte"},
		{Date: day(2024, 1, 8), Amount: 110, Category: "Comida"},
		{Date: day(2024, 1, 9), Amount: 25, Category: "Transporte"},
		{Date: day(2024, 1, 15), Amount: 90, Category: "Comida"},
	}
}

func TestAggregateByCategory(t *testing.T) {
	aggs := AggregateByCategory(sampleLedger())

	food, ok := aggs["Comida"]
	if !ok {
		t.Fatal("missing Comida aggregate")
	}
	if food.Total != 300 || food.Count != 3 || food.Min != 90 || food.Max != 110 {
		t.Errorf("Comida aggregate = %+v", food)
	}
	if food.Mean != 100 {
		t.Errorf("Comida mean = %v, want 100", food.Mean)
	}

	transport := aggs["Transporte"]
	if transport.Total != 45 || transport.Count != 2 {
		t.Errorf("Transporte aggregate = %+v", transport)
	}
}

func TestDailyTotalsMergesSameDay(t *testing.T) {
	ledger := Ledger{
		{Date: day(2024, 1, 1), Amount: 10, Category: "A"},
		{Date: day(2024, 1, 1), Amount: 15, Category: "B"},
		{Date: day(2024, 1, 3), Amount: 5, Category: "A"},
	}
	daily := DailyTotals(ledger)
	if len(daily) != 2 {
		t.Fatalf("len = %d, want 2", len(daily))
	}
	if daily[0].Total != 25 {
		t.Errorf("first day total = %v, want 25", daily[0].Total)
	}
	if !daily[0].Day.Before(daily[1].Day) {
		t.Error("daily totals not sorted ascending")
	}
}

func TestMonthlyTotals(t *testing.T) {
	ledger := Ledger{
		{Date: day(2024, 1, 10), Amount: 200, Category: "A"},
		{Date: day(2024, 1, 20), Amount: 300, Category: "A"},
		{Date: day(2024, 2, 5), Amount: 1000, Category: "A"},
	}
	months := MonthlyTotals(ledger)
	if len(months) != 2 {
		t.Fatalf("len = %d, want 2", len(months))
	}
	if months[0].Month != "2024-01" || months[0].Total != 500 || months[0].Count != 2 {
		t.Errorf("first month = %+v", months[0])
	}
	if months[1].Month != "2024-02" || months[1].Total != 1000 {
		t.Errorf("second month = %+v", months[1])
	}
}

func TestWeeklyTotalsOrdering(t *testing.T) {
	ledger := Ledger{
		{Date: day(2023, 12, 28), Amount: 10, Category: "A"}, // ISO week 52/2023
		{Date: day(2024, 1, 4), Amount: 20, Category: "A"},   // ISO week 1/2024
		{Date: day(2024, 1, 11), Amount: 30, Category: "A"},  // ISO week 2/2024
	}
	weeks := WeeklyTotals(ledger)
	if len(weeks) != 3 {
		t.Fatalf("len = %d, want 3", len(weeks))
	}
	if weeks[0].Year != 2023 || weeks[0].Week != 52 {
		t.Errorf("first week = %+v", weeks[0])
	}
	if weeks[2].Total != 30 {
		t.Errorf("last week total = %v, want 30", weeks[2].Total)
	}
}

func TestLedgerHelpers(t *testing.T) {
	l := sampleLedger()
	if got := l.Total(); got != 345 {
		t.Errorf("Total() = %v, want 345", got)
	}
	cats := l.Categories()
	if len(cats) != 2 || cats[0] != "Comida" || cats[1] != "Transporte" {
		t.Errorf("Categories() = %v", cats)
	}
	if got := len(l.ByCategory("Comida")); got != 3 {
		t.Errorf("ByCategory(Comida) len = %d, want 3", got)
	}
	if !l.LastDate().Equal(day(2024, 1, 15)) {
		t.Errorf("LastDate() = %v", l.LastDate())
	}
}
