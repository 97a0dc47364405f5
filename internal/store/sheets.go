package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"gastos/internal/core"
)

// SheetsSource reads expenses from a Google Sheets spreadsheet, for users
// who keep their ledger in a shared sheet instead of the API. It is a
// read-only adapter: rows hold user id, date, amount and category.
type SheetsSource struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ExpenseLister = (*SheetsSource)(nil)

// NewSheetsSourceFromEnv builds a SheetsSource from the environment.
// Required: GOOGLE_SPREADSHEET_ID. Auth comes from
// GOOGLE_CREDENTIALS_JSON, GOOGLE_APPLICATION_CREDENTIALS or ADC.
// Optional: GOOGLE_SHEET_NAME (default "Gastos").
func NewSheetsSourceFromEnv(ctx context.Context) (*SheetsSource, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Gastos"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &SheetsSource{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	if credsJSON := os.Getenv("GOOGLE_CREDENTIALS_JSON"); credsJSON != "" {
		return gsheet.NewService(ctx,
			goption.WithCredentialsJSON([]byte(credsJSON)),
			goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	}
	if credsFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credsFile != "" {
		return gsheet.NewService(ctx,
			goption.WithCredentialsFile(credsFile),
			goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	}
	// Fall back to application default credentials.
	return gsheet.NewService(ctx, goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
}

// ListExpenses implements ExpenseLister. Rows whose first column does not
// match userID are skipped; malformed rows are logged and skipped rather
// than failing the whole read.
func (s *SheetsSource) ListExpenses(ctx context.Context, userID string) (core.Ledger, error) {
	rng := fmt.Sprintf("%s!A2:D", s.sheetName)
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read sheet range %s: %w", rng, err)
	}

	var raw []core.RawRecord
	for i, row := range resp.Values {
		if len(row) < 3 {
			continue
		}
		if cell(row, 0) != userID {
			continue
		}
		amount, err := decimal.NewFromString(strings.ReplaceAll(cell(row, 2), ",", "."))
		if err != nil {
			slog.WarnContext(ctx, "Skipping sheet row with bad amount",
				"row", i+2, "value", cell(row, 2))
			continue
		}
		category := cell(row, 3)
		raw = append(raw, core.RawRecord{
			Date:     cell(row, 1),
			Amount:   &amount,
			Category: &category,
		})
	}
	if len(raw) == 0 {
		return core.Ledger{}, nil
	}

	ledger, err := core.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("normalize sheet rows: %w", err)
	}
	return ledger, nil
}

func cell(row []any, i int) string {
	if i >= len(row) {
		return ""
	}
	s, _ := row[i].(string)
	return strings.TrimSpace(s)
}
