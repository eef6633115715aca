package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"studiodesk/internal/amqp"
	"studiodesk/internal/backup"
	"studiodesk/internal/cache"
	"studiodesk/internal/core"
	"studiodesk/internal/storage"
)

// LedgerService orchestrates transaction operations across SQLite, the
// backup manager and AMQP.
type LedgerService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
	backups    *backup.Manager
	summaries  cache.Cache[core.Summary]
}

// NewLedgerService wires the ledger around its dependencies. amqpClient may
// be nil when the broker is not configured; sync messages are then skipped.
func NewLedgerService(storage *storage.SQLiteRepository, amqpClient *amqp.Client, backups *backup.Manager, summaries cache.Cache[core.Summary]) *LedgerService {
	return &LedgerService{
		storage:    storage,
		amqpClient: amqpClient,
		backups:    backups,
		summaries:  summaries,
	}
}

// RecordTransaction validates and stores a transaction, then publishes the
// sync message that queues the sheet mirror update.
func (s *LedgerService) RecordTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}

	// Validate already proved the date parses; store the canonical form.
	normalized, err := core.NormalizeDate(in.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	in.Date = normalized

	txn, err := s.storage.CreateTransaction(ctx, in)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.invalidateSummaries()

	if err := s.publishSyncMessage(ctx, txn.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", txn.ID, "error", err)
		// Don't fail the request - transaction is saved locally
	}

	return txn, nil
}

// ListTransactions returns transactions newest first, restricted to the
// named period. Unknown period names return the full history.
func (s *LedgerService) ListTransactions(ctx context.Context, period string) ([]core.Transaction, error) {
	return s.storage.ListTransactions(ctx, core.PeriodBound(period, time.Now()))
}

// Summary computes the analytics aggregate for a period, serving repeated
// requests from cache until a write invalidates it.
func (s *LedgerService) Summary(ctx context.Context, period string) (core.Summary, error) {
	key := core.NormalizePeriod(period)

	if s.summaries != nil {
		if cached, ok := s.summaries.Get(key); ok {
			return cached, nil
		}
	}

	transactions, err := s.ListTransactions(ctx, period)
	if err != nil {
		return core.Summary{}, fmt.Errorf("load transactions for summary: %w", err)
	}
	summary := core.Summarize(transactions)

	if s.summaries != nil {
		s.summaries.Set(key, summary)
	}

	return summary, nil
}

// ClearResult describes what a completed clear-all removed and where the
// safety backup landed. Backup is empty when there was no database file yet.
type ClearResult struct {
	Backup       string
	Transactions int64
	Messages     int64
}

// ClearAll wipes every transaction and message after taking a safety backup.
// The confirmation string must match core.ClearConfirmationToken exactly;
// any backup failure aborts the clear with the data intact.
func (s *LedgerService) ClearAll(ctx context.Context, confirmation string) (ClearResult, error) {
	if confirmation != core.ClearConfirmationToken {
		return ClearResult{}, core.ErrBadConfirmation
	}

	backupPath, err := s.backups.BackupNow(ctx)
	if err != nil {
		return ClearResult{}, fmt.Errorf("pre-clear backup: %w", err)
	}

	counts, err := s.storage.ClearAll(ctx)
	if err != nil {
		return ClearResult{}, fmt.Errorf("clear all data: %w", err)
	}

	s.invalidateSummaries()

	slog.InfoContext(ctx, "Clear-all completed",
		"backup", backupPath,
		"transactions", counts.Transactions,
		"messages", counts.Messages)

	return ClearResult{
		Backup:       backupPath,
		Transactions: counts.Transactions,
		Messages:     counts.Messages,
	}, nil
}

// Ping reports whether the backing store is reachable.
func (s *LedgerService) Ping(ctx context.Context) error {
	return s.storage.Ping(ctx)
}

func (s *LedgerService) publishSyncMessage(ctx context.Context, id int64) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}

	return s.amqpClient.PublishTransactionSync(ctx, id)
}

func (s *LedgerService) invalidateSummaries() {
	if s.summaries != nil {
		s.summaries.Clear()
	}
}

// Close closes both storage and AMQP connections
func (s *LedgerService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}

	return nil
}
