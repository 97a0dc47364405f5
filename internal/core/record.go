package core

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCategory is assigned to records whose category is blank.
const DefaultCategory = "Sin categoría"

type (
	// RawRecord is an expense as received from the outside: date and amount
	// may arrive in several formats, category may be blank. Pointer fields
	// distinguish "absent" from "zero".
	RawRecord struct {
		Date     string           `json:"fecha"`
		Amount   *decimal.Decimal `json:"monto"`
		Category *string          `json:"categoria"`
	}

	// Record is a normalized expense: midnight-UTC date, non-negative
	// amount, non-empty category.
	Record struct {
		Date     time.Time `json:"fecha"`
		Amount   float64   `json:"monto"`
		Category string    `json:"categoria"`
	}

	// Ledger is a date-ascending sequence of normalized records. It is
	// built once per analysis call and never mutated afterwards.
	Ledger []Record
)

// acceptedDateLayouts lists the date formats the normalizer understands,
// tried in order.
var acceptedDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"2006/01/02",
}

// Normalize validates and canonicalizes raw records into a Ledger.
// It fails with *ValidationError on the first record missing a date or
// amount, on an unparseable date, on a negative amount, or when the input
// is empty. Blank categories default to DefaultCategory.
func Normalize(raw []RawRecord) (Ledger, error) {
	if len(raw) == 0 {
		return nil, &ValidationError{Field: "expenses", Reason: "empty record list"}
	}

	ledger := make(Ledger, 0, len(raw))
	for i, r := range raw {
		if strings.TrimSpace(r.Date) == "" {
			return nil, &ValidationError{Index: i, Field: "fecha", Reason: "missing"}
		}
		date, err := parseDate(r.Date)
		if err != nil {
			return nil, &ValidationError{Index: i, Field: "fecha", Reason: "unrecognized format: " + r.Date}
		}
		if r.Amount == nil {
			return nil, &ValidationError{Index: i, Field: "monto", Reason: "missing"}
		}
		if r.Amount.IsNegative() {
			return nil, &ValidationError{Index: i, Field: "monto", Reason: "negative amount"}
		}
		category := DefaultCategory
		if r.Category != nil && strings.TrimSpace(*r.Category) != "" {
			category = strings.TrimSpace(*r.Category)
		}
		ledger = append(ledger, Record{
			Date:     date,
			Amount:   r.Amount.InexactFloat64(),
			Category: category,
		})
	}

	sort.SliceStable(ledger, func(i, j int) bool {
		return ledger[i].Date.Before(ledger[j].Date)
	})
	return ledger, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range acceptedDateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			// Keep only the calendar day
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// Round2 rounds a monetary value to two decimal places. Internal math runs
// at full float64 precision; rounding happens at the output boundary only.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Total returns the sum of all amounts.
func (l Ledger) Total() float64 {
	var total float64
	for _, r := range l {
		total += r.Amount
	}
	return total
}

// Amounts returns the amount column in ledger order.
func (l Ledger) Amounts() []float64 {
	out := make([]float64, len(l))
	for i, r := range l {
		out[i] = r.Amount
	}
	return out
}

// Categories returns distinct category names in first-seen order.
func (l Ledger) Categories() []string {
	seen := make(map[string]struct{}, len(l))
	var out []string
	for _, r := range l {
		if _, ok := seen[r.Category]; ok {
			continue
		}
		seen[r.Category] = struct{}{}
		out = append(out, r.Category)
	}
	return out
}

// ByCategory returns the records belonging to one category, preserving order.
func (l Ledger) ByCategory(category string) Ledger {
	var out Ledger
	for _, r := range l {
		if r.Category == category {
			out = append(out, r)
		}
	}
	return out
}

// LastDate returns the most recent record date, or the zero time for an
// empty ledger.
func (l Ledger) LastDate() time.Time {
	if len(l) == 0 {
		return time.Time{}
	}
	return l[len(l)-1].Date
}
