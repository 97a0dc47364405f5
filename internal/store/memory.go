package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"gastos/internal/advisor"
	"gastos/internal/core"
)

// MemoryStore keeps everything in process memory. It backs tests and
// single-shot analysis calls where nothing needs to survive a restart.
type MemoryStore struct {
	mu       sync.Mutex
	expenses map[string]core.Ledger
	budgets  map[string]advisor.Budget
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		expenses: make(map[string]core.Ledger),
		budgets:  make(map[string]advisor.Budget),
	}
}

// AddExpense implements ExpenseWriter, keeping the ledger date-sorted.
func (s *MemoryStore) AddExpense(_ context.Context, userID string, r core.Record) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ledger := append(s.expenses[userID], r)
	sort.SliceStable(ledger, func(i, j int) bool { return ledger[i].Date.Before(ledger[j].Date) })
	s.expenses[userID] = ledger
	return fmt.Sprintf("mem:%d", len(ledger)), nil
}

// ListExpenses implements ExpenseLister, returning a copy.
func (s *MemoryStore) ListExpenses(_ context.Context, userID string) (core.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(core.Ledger(nil), s.expenses[userID]...), nil
}

// Budget implements BudgetStore.
func (s *MemoryStore) Budget(_ context.Context, userID string) (advisor.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[userID]
	if !ok {
		return advisor.Budget{}, ErrNotFound
	}
	copied := advisor.Budget{Total: b.Total, ByCategory: make(map[string]float64, len(b.ByCategory))}
	for k, v := range b.ByCategory {
		copied.ByCategory[k] = v
	}
	return copied, nil
}

// SetBudget implements BudgetStore.
func (s *MemoryStore) SetBudget(_ context.Context, userID string, b advisor.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[userID] = b
	return nil
}

// ListUsers implements UserLister.
func (s *MemoryStore) ListUsers(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]string, 0, len(s.expenses))
	for id := range s.expenses {
		users = append(users, id)
	}
	sort.Strings(users)
	return users, nil
}
