package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"gastos/internal/advisor"
	"gastos/internal/core"
)

// SQLiteStore persists expenses and budgets in a local SQLite database.
// Amounts are stored as integer cents.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at dbPath and
// runs pending migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// AddExpense implements ExpenseWriter.
func (s *SQLiteStore) AddExpense(ctx context.Context, userID string, r core.Record) (string, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (user_id, expense_date, amount_cents, category) VALUES (?, ?, ?, ?)`,
		userID, r.Date.Format("2006-01-02"), toCents(r.Amount), r.Category)
	if err != nil {
		return "", fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", id,
		"user_id", userID,
		"amount_cents", toCents(r.Amount),
		"category", r.Category)

	return strconv.FormatInt(id, 10), nil
}

// ListExpenses implements ExpenseLister.
func (s *SQLiteStore) ListExpenses(ctx context.Context, userID string) (core.Ledger, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT expense_date, amount_cents, category FROM expenses WHERE user_id = ? ORDER BY expense_date, id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var ledger core.Ledger
	for rows.Next() {
		var dateStr, category string
		var cents int64
		if err := rows.Scan(&dateStr, &cents, &category); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, fmt.Errorf("parse stored date %q: %w", dateStr, err)
		}
		ledger = append(ledger, core.Record{
			Date:     date.UTC(),
			Amount:   fromCents(cents),
			Category: category,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return ledger, nil
}

// Budget implements BudgetStore. A user with no budget rows gets
// ErrNotFound.
func (s *SQLiteStore) Budget(ctx context.Context, userID string) (advisor.Budget, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, monthly_limit_cents FROM budgets WHERE user_id = ?`, userID)
	if err != nil {
		return advisor.Budget{}, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	budget := advisor.Budget{ByCategory: make(map[string]float64)}
	found := false
	for rows.Next() {
		var category string
		var cents int64
		if err := rows.Scan(&category, &cents); err != nil {
			return advisor.Budget{}, fmt.Errorf("scan budget: %w", err)
		}
		found = true
		if category == "" {
			budget.Total = fromCents(cents)
		} else {
			budget.ByCategory[category] = fromCents(cents)
		}
	}
	if err := rows.Err(); err != nil {
		return advisor.Budget{}, fmt.Errorf("iterate budgets: %w", err)
	}
	if !found {
		return advisor.Budget{}, ErrNotFound
	}
	return budget, nil
}

// SetBudget implements BudgetStore, replacing the user's budget wholesale.
func (s *SQLiteStore) SetBudget(ctx context.Context, userID string, b advisor.Budget) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin budget tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM budgets WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear budgets: %w", err)
	}
	if b.Total > 0 {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO budgets (user_id, category, monthly_limit_cents) VALUES (?, '', ?)`,
			userID, toCents(b.Total)); err != nil {
			return fmt.Errorf("insert total budget: %w", err)
		}
	}
	for category, limit := range b.ByCategory {
		if limit <= 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO budgets (user_id, category, monthly_limit_cents) VALUES (?, ?, ?)`,
			userID, category, toCents(limit)); err != nil {
			return fmt.Errorf("insert budget for %s: %w", category, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit budget tx: %w", err)
	}
	return nil
}

// ListUsers implements UserLister.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM expenses ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func toCents(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func fromCents(cents int64) float64 {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).InexactFloat64()
}
