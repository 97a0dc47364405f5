package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"gastos/internal/advisor"
	"gastos/internal/core"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	// Insert out of order; the listing must come back sorted.
	if _, err := s.AddExpense(ctx, "u1", core.Record{Date: day(2024, 1, 10), Amount: 20, Category: "Ocio"}); err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
	if _, err := s.AddExpense(ctx, "u1", core.Record{Date: day(2024, 1, 5), Amount: 10, Category: "Comida"}); err != nil {
		t.Fatalf("AddExpense: %v", err)
	}

	ledger, err := s.ListExpenses(ctx, "u1")
	if err != nil {
		t.Fatalf("ListExpenses: %v", err)
	}
	if len(ledger) != 2 {
		t.Fatalf("len = %d, want 2", len(ledger))
	}
	if !ledger[0].Date.Before(ledger[1].Date) {
		t.Error("ledger not date ascending")
	}

	other, err := s.ListExpenses(ctx, "u2")
	if err != nil {
		t.Fatalf("ListExpenses(u2): %v", err)
	}
	if len(other) != 0 {
		t.Errorf("u2 ledger = %d records, want 0", len(other))
	}
}

func TestMemoryStoreBudget(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, err := s.Budget(ctx, "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing budget: got %v, want ErrNotFound", err)
	}

	want := advisor.Budget{Total: 500, ByCategory: map[string]float64{"Comida": 200}}
	if err := s.SetBudget(ctx, "u1", want); err != nil {
		t.Fatalf("SetBudget: %v", err)
	}
	got, err := s.Budget(ctx, "u1")
	if err != nil {
		t.Fatalf("Budget: %v", err)
	}
	if got.Total != 500 || got.ByCategory["Comida"] != 200 {
		t.Errorf("budget = %+v", got)
	}

	// Mutating the returned copy must not leak back into the store.
	got.ByCategory["Comida"] = 999
	again, _ := s.Budget(ctx, "u1")
	if again.ByCategory["Comida"] != 200 {
		t.Error("returned budget aliases internal state")
	}
}

func TestMemoryStoreListUsers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for _, u := range []string{"zoe", "ana"} {
		if _, err := s.AddExpense(ctx, u, core.Record{Date: day(2024, 1, 1), Amount: 1, Category: "X"}); err != nil {
			t.Fatalf("AddExpense(%s): %v", u, err)
		}
	}
	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 || users[0] != "ana" || users[1] != "zoe" {
		t.Errorf("users = %v, want [ana zoe]", users)
	}
}

func TestCentsConversion(t *testing.T) {
	tests := []struct {
		amount float64
		cents  int64
	}{
		{12.34, 1234},
		{0, 0},
		{0.1, 10},
		{99.999, 10000},
	}
	for _, tt := range tests {
		if got := toCents(tt.amount); got != tt.cents {
			t.Errorf("toCents(%v) = %d, want %d", tt.amount, got, tt.cents)
		}
	}
	if got := fromCents(1234); got != 12.34 {
		t.Errorf("fromCents(1234) = %v, want 12.34", got)
	}
}
