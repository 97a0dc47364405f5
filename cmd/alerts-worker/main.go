package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"gastos/internal/config"
	applog "gastos/internal/log"
	"gastos/internal/notify"
	"gastos/internal/store"
	"gastos/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentWorker)
	applog.SetDefault(logger)

	logger.Info("Starting alerts-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// The worker always works off the SQLite store: it is the user
	// directory and budget source even when expenses come from Sheets.
	db, err := store.NewSQLiteStore(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer db.Close()

	var expenses store.ExpenseLister = db
	if cfg.DataBackend == "sheets" && cfg.GoogleSpreadsheetID != "" {
		src, err := store.NewSheetsSourceFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets source", "error", err)
			os.Exit(1)
		}
		expenses = src
		logger.Info("Reading expenses from Google Sheets", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	}

	publisher, err := notify.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize notification client", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := worker.NewAlertWorker(expenses, db, db, publisher, cfg.AlertSeverityMax)

	// Run one sweep at startup so a restart never skips a day.
	if err := w.Run(ctx); err != nil {
		logger.Error("Startup sweep failed", "error", err)
		// Don't exit - the scheduled sweeps may still succeed.
	}

	cronRunner, err := w.Start(ctx, cfg.AlertSchedule)
	if err != nil {
		logger.Error("Failed to schedule alert sweep", "error", err, "schedule", cfg.AlertSchedule)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	logger.Info("Shutting down worker...")
	cancel()

	// Let an in-flight sweep finish before exiting.
	stopCtx := cronRunner.Stop()
	select {
	case <-stopCtx.Done():
		logger.Info("Worker shutdown complete")
	case <-time.After(30 * time.Second):
		logger.Warn("Shutdown timeout reached")
	}
}
