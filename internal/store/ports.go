// Package store persists per-user expenses and budgets. The analysis
// components only ever see a core.Ledger; the adapters behind these ports
// decide where it actually lives.
package store

import (
	"context"
	"errors"

	"gastos/internal/advisor"
	"gastos/internal/core"
)

// ErrNotFound is returned when a user has no stored data for a lookup.
var ErrNotFound = errors.New("not found")

// Ports for outbound adapters.
type (
	// ExpenseLister reads one user's full ledger, date ascending.
	ExpenseLister interface {
		ListExpenses(ctx context.Context, userID string) (core.Ledger, error)
	}

	// ExpenseWriter appends one expense and returns a storage reference.
	ExpenseWriter interface {
		AddExpense(ctx context.Context, userID string, r core.Record) (ref string, err error)
	}

	// BudgetStore reads and replaces one user's monthly budget.
	BudgetStore interface {
		Budget(ctx context.Context, userID string) (advisor.Budget, error)
		SetBudget(ctx context.Context, userID string, b advisor.Budget) error
	}

	// UserLister enumerates every user with stored expenses.
	UserLister interface {
		ListUsers(ctx context.Context) ([]string, error)
	}
)
