package http

import (
	"net/http"

	"gastos/internal/advisor"
	"gastos/internal/anomaly"
	"gastos/internal/report"
)

// handleSavingsGoals builds a savings plan toward a target amount.
func (s *Server) handleSavingsGoals(w http.ResponseWriter, r *http.Request) {
	req, ledger, err := decodeAnalysisRequest(r)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	plan, err := advisor.SavingsGoal(ledger, req.Target, req.Months)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	OK(w, plan)
}

// handleSavingsTips derives rule-based advice from the spending pattern.
func (s *Server) handleSavingsTips(w http.ResponseWriter, r *http.Request) {
	_, ledger, err := decodeAnalysisRequest(r)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	OK(w, map[string]any{"consejos": advisor.Tips(ledger)})
}

// handleBudgetAlerts grades spending against the posted budget.
func (s *Server) handleBudgetAlerts(w http.ResponseWriter, r *http.Request) {
	req, ledger, err := decodeAnalysisRequest(r)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	var budget advisor.Budget
	if req.Budget != nil {
		budget = *req.Budget
	}
	OK(w, advisor.BudgetAlerts(ledger, budget))
}

// handleHealthScore scores overall financial health from 0 to 100.
func (s *Server) handleHealthScore(w http.ResponseWriter, r *http.Request) {
	req, ledger, err := decodeAnalysisRequest(r)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	var monthlyBudget float64
	if req.Budget != nil {
		monthlyBudget = req.Budget.Total
	}
	anomalies := anomaly.Detect(ledger, 0)
	OK(w, advisor.Health(ledger, monthlyBudget, anomalies.Count))
}

// handleWeeklyReport summarizes the last seven days of the ledger.
func (s *Server) handleWeeklyReport(w http.ResponseWriter, r *http.Request) {
	_, ledger, err := decodeAnalysisRequest(r)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	summary, err := report.Weekly(ledger)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	OK(w, summary)
}

// handleSavingsComplete assembles the full savings report.
func (s *Server) handleSavingsComplete(w http.ResponseWriter, r *http.Request) {
	req, ledger, err := decodeAnalysisRequest(r)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	opts := report.SavingsOptions{
		Target:      req.Target,
		TargetMonth: req.Months,
	}
	if req.Budget != nil {
		opts.Budget = *req.Budget
	}
	OK(w, report.Savings(r.Context(), ledger, opts))
}
