package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func str(s string) *string { return &s }

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		raw     []RawRecord
		wantLen int
		wantErr bool
	}{
		{
			name:    "empty input fails",
			raw:     nil,
			wantErr: true,
		},
		{
			name: "valid records sorted by date",
			raw: []RawRecord{
				{Date: "2024-01-10", Amount: dec("50"), Category: str("Comida")},
				{Date: "2024-01-02", Amount: dec("30"), Category: str("Transporte")},
				{Date: "2024-01-05", Amount: dec("20.50"), Category: str("Comida")},
			},
			wantLen: 3,
		},
		{
			name: "missing date fails",
			raw: []RawRecord{
				{Date: "", Amount: dec("10"), Category: str("Comida")},
			},
			wantErr: true,
		},
		{
			name: "missing amount fails",
			raw: []RawRecord{
				{Date: "2024-01-01", Category: str("Comida")},
			},
			wantErr: true,
		},
		{
			name: "negative amount fails",
			raw: []RawRecord{
				{Date: "2024-01-01", Amount: dec("-5"), Category: str("Comida")},
			},
			wantErr: true,
		},
		{
			name: "unparseable date fails",
			raw: []RawRecord{
				{Date: "not-a-date", Amount: dec("10"), Category: str("Comida")},
			},
			wantErr: true,
		},
		{
			name: "blank category gets default",
			raw: []RawRecord{
				{Date: "2024-01-01", Amount: dec("10"), Category: str("  ")},
			},
			wantLen: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger, err := Normalize(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Normalize() expected error, got nil")
				}
				var ve *ValidationError
				if !errors.As(err, &ve) {
					t.Errorf("Normalize() error = %T, want *ValidationError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize() unexpected error: %v", err)
			}
			if len(ledger) != tt.wantLen {
				t.Errorf("Normalize() len = %d, want %d", len(ledger), tt.wantLen)
			}
			for i := 1; i < len(ledger); i++ {
				if ledger[i].Date.Before(ledger[i-1].Date) {
					t.Errorf("Normalize() not sorted at index %d", i)
				}
			}
		})
	}
}

func TestNormalizeDefaultsBlankCategory(t *testing.T) {
	ledger, err := Normalize([]RawRecord{
		{Date: "2024-01-01", Amount: dec("10")},
	})
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if ledger[0].Category != DefaultCategory {
		t.Errorf("Category = %q, want %q", ledger[0].Category, DefaultCategory)
	}
}

func TestNormalizeDateFormats(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"2024-03-05T14:30:00Z", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"2024-03-05 14:30:00", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"05/03/2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"2024/03/05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			ledger, err := Normalize([]RawRecord{
				{Date: tt.in, Amount: dec("10"), Category: str("Comida")},
			})
			if err != nil {
				t.Fatalf("Normalize(%q) error: %v", tt.in, err)
			}
			if !ledger[0].Date.Equal(tt.want) {
				t.Errorf("date = %v, want %v", ledger[0].Date, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	raw := []RawRecord{
		{Date: "2024-01-10", Amount: dec("50"), Category: str("Comida")},
		{Date: "2024-01-02", Amount: dec("30"), Category: str("Transporte")},
	}
	once, err := Normalize(raw)
	if err != nil {
		t.Fatalf("first Normalize() error: %v", err)
	}

	// Re-normalizing an already-normalized ledger must be a no-op.
	reRaw := make([]RawRecord, len(once))
	for i, r := range once {
		amt := decimal.NewFromFloat(r.Amount)
		cat := r.Category
		reRaw[i] = RawRecord{Date: r.Date.Format("2006-01-02"), Amount: &amt, Category: &cat}
	}
	twice, err := Normalize(reRaw)
	if err != nil {
		t.Fatalf("second Normalize() error: %v", err)
	}
	if len(once) != len(twice) {
		t.Fatalf("length changed: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if !once[i].Date.Equal(twice[i].Date) || once[i].Amount != twice[i].Amount || once[i].Category != twice[i].Category {
			t.Errorf("record %d changed: %+v vs %+v", i, once[i], twice[i])
		}
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{12.345, 12.35},
		{12.344, 12.34},
		{0, 0},
		{-1.005, -1.01},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
