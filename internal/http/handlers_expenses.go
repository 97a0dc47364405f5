package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"gastos/internal/advisor"
	"gastos/internal/core"
	applog "gastos/internal/log"
	"gastos/internal/store"
)

// handleListExpenses returns a user's stored ledger.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	if s.expenses == nil {
		NotFoundError("no expense store configured").Write(w)
		return
	}
	userID := r.PathValue("id")
	if userID == "" {
		BadRequestError("missing user id").Write(w)
		return
	}

	ledger, hit := s.ledgerCache.Get(userID)
	if !hit {
		var err error
		ledger, err = s.expenses.ListExpenses(r.Context(), userID)
		if err != nil {
			s.logs.LogError(r.Context(), "List expenses failed", err, applog.OpList,
				applog.NewFields().WithUser(userID))
			InternalServerError("could not list expenses").Write(w)
			return
		}
		if ledger == nil {
			ledger = core.Ledger{}
		}
		s.ledgerCache.Set(userID, ledger)
	}

	OK(w, map[string]any{
		"user_id":  userID,
		"gastos":   ledger,
		"cantidad": len(ledger),
		"total":    core.Round2(ledger.Total()),
	})
}

// handleAddExpense normalizes and stores one expense for a user.
func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	if s.writer == nil {
		NotFoundError("no expense store configured").Write(w)
		return
	}
	userID := r.PathValue("id")
	if userID == "" {
		BadRequestError("missing user id").Write(w)
		return
	}

	var raw core.RawRecord
	if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes)).Decode(&raw); err != nil {
		BadRequestError("malformed JSON body").Write(w)
		return
	}
	ledger, err := core.Normalize([]core.RawRecord{raw})
	if err != nil {
		writeAnalysisError(w, err)
		return
	}

	ref, err := s.writer.AddExpense(r.Context(), userID, ledger[0])
	if err != nil {
		s.logs.LogError(r.Context(), "Add expense failed", err, applog.OpCreate,
			applog.NewFields().WithUser(userID))
		InternalServerError("could not store expense").Write(w)
		return
	}

	s.ledgerCache.Delete(userID)
	s.logs.LogExpenseRecorded(r.Context(), userID, ledger[0].Amount, ledger[0].Category, ref)

	NewJSONResponse().Status(http.StatusCreated).Data(map[string]any{
		"ref":   ref,
		"gasto": ledger[0],
	}).Write(w)
}

// handleGetBudget returns a user's stored budget.
func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	if s.budgets == nil {
		NotFoundError("no budget store configured").Write(w)
		return
	}
	userID := r.PathValue("id")
	budget, err := s.budgets.Budget(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFoundError("no budget for user").Write(w)
			return
		}
		s.logs.LogError(r.Context(), "Read budget failed", err, applog.OpRead,
			applog.NewFields().WithUser(userID))
		InternalServerError("could not read budget").Write(w)
		return
	}
	OK(w, budget)
}

// handleSetBudget replaces a user's budget wholesale.
func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	if s.budgets == nil {
		NotFoundError("no budget store configured").Write(w)
		return
	}
	userID := r.PathValue("id")

	var budget advisor.Budget
	if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes)).Decode(&budget); err != nil {
		BadRequestError("malformed JSON body").Write(w)
		return
	}
	if budget.Total < 0 {
		BadRequestError("budget total cannot be negative").Write(w)
		return
	}
	for category, limit := range budget.ByCategory {
		if limit < 0 {
			BadRequestError("budget for " + category + " cannot be negative").Write(w)
			return
		}
	}

	if err := s.budgets.SetBudget(r.Context(), userID, budget); err != nil {
		s.logs.LogError(r.Context(), "Set budget failed", err, applog.OpCreate,
			applog.NewFields().WithUser(userID))
		InternalServerError("could not store budget").Write(w)
		return
	}
	OK(w, budget)
}
