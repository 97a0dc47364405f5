// Package worker runs the scheduled analysis sweep: for every user with
// stored expenses it grades the budget, detects anomalies and publishes
// the findings as notifications.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/robfig/cron/v3"

	"gastos/internal/advisor"
	"gastos/internal/anomaly"
	"gastos/internal/core"
	applog "gastos/internal/log"
	"gastos/internal/notify"
	"gastos/internal/report"
	"gastos/internal/store"
)

// AlertWorker periodically reviews every user's ledger and pushes
// notifications for what needs attention.
type AlertWorker struct {
	expenses    store.ExpenseLister
	budgets     store.BudgetStore
	users       store.UserLister
	publisher   notify.Publisher
	severityMax int
}

// NewAlertWorker wires the worker's dependencies. severityMax bounds
// which budget alerts are worth a notification (1 is most severe).
func NewAlertWorker(expenses store.ExpenseLister, budgets store.BudgetStore, users store.UserLister, publisher notify.Publisher, severityMax int) *AlertWorker {
	if severityMax < 1 || severityMax > 4 {
		severityMax = 2
	}
	return &AlertWorker{
		expenses:    expenses,
		budgets:     budgets,
		users:       users,
		publisher:   publisher,
		severityMax: severityMax,
	}
}

// Start registers the sweep on the given cron schedule and starts the
// scheduler. The returned cron must be stopped by the caller on shutdown.
func (w *AlertWorker) Start(ctx context.Context, schedule string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if err := w.Run(ctx); err != nil {
			slog.ErrorContext(ctx, "Alert sweep failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("register alert schedule %q: %w", schedule, err)
	}
	c.Start()
	slog.InfoContext(ctx, "Alert worker scheduled", "schedule", schedule)
	return c, nil
}

// Run executes one sweep over every known user. Per-user failures are
// logged and skipped so one broken ledger cannot stall the rest.
func (w *AlertWorker) Run(ctx context.Context) error {
	users, err := w.users.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	slog.InfoContext(ctx, "Starting alert sweep", "users", len(users))

	var failed int
	for _, userID := range users {
		if err := w.reviewUser(ctx, userID); err != nil {
			slog.ErrorContext(ctx, "User review failed", applog.FieldUserID, userID, applog.FieldError, err)
			failed++
		}
	}

	slog.InfoContext(ctx, "Alert sweep completed", "users", len(users), "failed", failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d user reviews failed", failed, len(users))
	}
	return nil
}

func (w *AlertWorker) reviewUser(ctx context.Context, userID string) error {
	ledger, err := w.expenses.ListExpenses(ctx, userID)
	if err != nil {
		return fmt.Errorf("list expenses: %w", err)
	}
	if len(ledger) == 0 {
		return nil
	}
	slog.DebugContext(ctx, "Reviewing user",
		applog.FieldUserID, userID, applog.FieldRecordCount, len(ledger))

	budget, err := w.budgets.Budget(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("read budget: %w", err)
	}

	if err := w.publishBudgetAlerts(ctx, userID, ledger, budget); err != nil {
		return err
	}
	if err := w.publishAnomalies(ctx, userID, ledger); err != nil {
		return err
	}
	return w.publishWeeklyReport(ctx, userID, ledger)
}

func (w *AlertWorker) publishBudgetAlerts(ctx context.Context, userID string, ledger core.Ledger, budget advisor.Budget) error {
	if budget.Total <= 0 && len(budget.ByCategory) == 0 {
		return nil
	}
	for _, alert := range advisor.BudgetAlerts(ledger, budget).Alerts {
		if alert.Severity > w.severityMax {
			continue
		}
		n := notify.NewNotification(userID, notify.KindBudgetAlert,
			fmt.Sprintf("Presupuesto de %s: %s", alert.Scope, alert.Level), alert.Message)
		n.Data = map[string]string{
			"ambito":    alert.Scope,
			"severidad": strconv.Itoa(alert.Severity),
		}
		if err := w.publisher.Publish(ctx, n); err != nil {
			return fmt.Errorf("publish budget alert: %w", err)
		}
		slog.InfoContext(ctx, "Budget alert published",
			applog.FieldUserID, userID,
			applog.FieldAlertSeverity, alert.Severity,
			applog.FieldOperation, applog.OpNotify)
	}
	return nil
}

func (w *AlertWorker) publishAnomalies(ctx context.Context, userID string, ledger core.Ledger) error {
	res := anomaly.Detect(ledger, 0)
	if res.Count == 0 {
		return nil
	}
	n := notify.NewNotification(userID, notify.KindAnomaly,
		"Gastos inusuales detectados",
		fmt.Sprintf("Se detectaron %d gastos fuera de tu patrón habitual (%.1f%% del total).",
			res.Count, res.Percentage))
	n.Data = map[string]string{"cantidad": strconv.Itoa(res.Count)}
	if err := w.publisher.Publish(ctx, n); err != nil {
		return fmt.Errorf("publish anomaly notification: %w", err)
	}
	slog.InfoContext(ctx, "Anomaly notification published",
		applog.FieldUserID, userID, applog.FieldAnomalyCount, res.Count)
	return nil
}

func (w *AlertWorker) publishWeeklyReport(ctx context.Context, userID string, ledger core.Ledger) error {
	summary, err := report.Weekly(ledger)
	if err != nil {
		return fmt.Errorf("build weekly report: %w", err)
	}
	n := notify.NewNotification(userID, notify.KindWeeklyReport,
		"Tu resumen semanal",
		fmt.Sprintf("Entre %s y %s gastaste %.2f.", summary.From, summary.To, summary.Total))
	n.Data = map[string]string{"report_id": summary.ID}
	if err := w.publisher.Publish(ctx, n); err != nil {
		return fmt.Errorf("publish weekly report: %w", err)
	}
	slog.InfoContext(ctx, "Weekly report published",
		applog.FieldUserID, userID, applog.FieldReportID, summary.ID)
	return nil
}
