package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studiodesk/internal/amqp"
	"studiodesk/internal/cli"
	"studiodesk/internal/log"
	gsheet "studiodesk/internal/sheets/google"
	"studiodesk/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentWorker)

	logger.Info("Starting studiodesk-worker")

	// The worker exists to drain the sync queue into the sheet mirror;
	// both endpoints must be configured.
	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for the mirror worker")
		os.Exit(1)
	}
	if !cfg.SheetsEnabled() {
		logger.Error("SHEETS_SPREADSHEET_ID is required for the mirror worker")
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.DBPath)
	defer repo.Close()

	ledger, err := gsheet.New(context.Background(), cfg.SheetsSpreadsheetID, cfg.SheetsSheetName)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized",
		"spreadsheet_id", cfg.SheetsSpreadsheetID, "sheet", cfg.SheetsSheetName)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mirror := worker.NewMirrorWorker(repo, ledger, cfg.SyncBatchSize)

	// Rows recorded while the worker was down are still marked pending;
	// drain them before consuming live events.
	logger.Info("Performing startup sync check...")
	if err := mirror.StartupSyncCheck(ctx); err != nil {
		logger.Error("Failed startup sync check", log.FieldError, err)
		// Don't exit - continue with normal operation
	}

	go func() {
		err := amqpClient.ConsumeTransactionSync(ctx, func(msg *amqp.TransactionSyncMessage) error {
			return mirror.HandleSyncMessage(ctx, msg)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", log.FieldError, err)
		}
		cancel()
	}()

	// Periodic catch-up for events the queue never delivered.
	ticker := time.NewTicker(cfg.SyncInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := mirror.ProcessPending(ctx); err != nil {
					logger.Error("Periodic sync failed", log.FieldError, err)
				}
			}
		}
	}()

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

	// Give in-flight handlers a moment to settle before the deferred closes.
	time.Sleep(2 * time.Second)
	logger.Info("Worker shutdown complete")
}
