// Package worker moves recorded transactions into the Google Sheets ledger
// mirror, driven by AMQP messages with a polling sweep as backstop.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"studiodesk/internal/amqp"
	"studiodesk/internal/core"
	"studiodesk/internal/sheets"
	"studiodesk/internal/storage"
)

// MirrorWorker appends transactions to the ledger mirror and keeps the
// per-row sync bookkeeping in SQLite up to date. The mirror is append-only:
// a clear-all on the primary store never removes mirrored rows.
type MirrorWorker struct {
	storage   *storage.SQLiteRepository
	ledger    sheets.LedgerAppender
	batchSize int
}

func NewMirrorWorker(storage *storage.SQLiteRepository, ledger sheets.LedgerAppender, batchSize int) *MirrorWorker {
	return &MirrorWorker{
		storage:   storage,
		ledger:    ledger,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single transaction sync message from AMQP
func (w *MirrorWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "id", msg.ID)

	txn, err := w.storage.GetTransaction(ctx, msg.ID)
	if errors.Is(err, storage.ErrNotFound) {
		// The row was cleared before the mirror caught up. Nothing to
		// append; the message is done.
		slog.WarnContext(ctx, "Transaction no longer exists, skipping mirror append", "id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	if err := w.mirrorToLedger(ctx, *txn); err != nil {
		return fmt.Errorf("mirror transaction: %w", err)
	}

	return nil
}

// ProcessPending mirrors transactions that still carry pending sync status.
// This is a backup mechanism in case AMQP messages are lost.
func (w *MirrorWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncTransactions(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	for _, p := range pending {
		txn, err := w.storage.GetTransaction(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get transaction", "id", p.ID, "error", err)
			if err := w.storage.MarkSyncError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", p.ID, "error", err)
			}
			continue
		}

		if err := w.mirrorToLedger(ctx, *txn); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror transaction", "id", p.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupSyncCheck mirrors any backlog of pending transactions at worker
// startup, recovering from missed AMQP messages or worker downtime.
func (w *MirrorWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncTransactions(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending transactions for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending transactions on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, p := range pending {
		txn, err := w.storage.GetTransaction(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get transaction for startup sync",
				"id", p.ID, "error", err)
			if err := w.storage.MarkSyncError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", p.ID, "error", err)
			}
			errorCount++
			continue
		}

		if err := w.mirrorToLedger(ctx, *txn); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror transaction during startup",
				"id", p.ID, "error", err)
			errorCount++
			continue
		}

		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}

func (w *MirrorWorker) mirrorToLedger(ctx context.Context, txn core.Transaction) error {
	ref, err := w.ledger.Append(ctx, txn)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, txn.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", txn.ID, "error", markErr)
		}
		return fmt.Errorf("append to ledger: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, txn.ID); err != nil {
		// The append itself worked; the row will be retried and the
		// mirror may end up with a duplicate, which we accept.
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", txn.ID, "error", err)
	}

	slog.InfoContext(ctx, "Transaction mirrored",
		"id", txn.ID,
		"sheets_ref", ref,
		"customer", txn.CustomerName,
		"amount", txn.AmountPaid)

	return nil
}
