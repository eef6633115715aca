package worker

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"studiodesk/internal/amqp"
	"studiodesk/internal/core"
	"studiodesk/internal/storage"
)

type fakeLedger struct {
	mu   sync.Mutex
	rows []core.Transaction
	err  error
}

func (f *fakeLedger) Append(ctx context.Context, txn core.Transaction) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, txn)
	return fmt.Sprintf("Ledger!A%d:J%d", len(f.rows)+1, len(f.rows)+1), nil
}

func (f *fakeLedger) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

func newTestRepository(t *testing.T) *storage.SQLiteRepository {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	return repo
}

func createTransaction(t *testing.T, repo *storage.SQLiteRepository) core.Transaction {
	t.Helper()

	txn, err := repo.CreateTransaction(context.Background(), core.TransactionInput{
		CustomerName: "Ada Obi",
		PhoneNumber:  "08030000000",
		Service:      "Photography",
		AmountPaid:   100,
		ServiceBy:    "Chioma",
		Expenses:     20,
		Date:         "2024-07-01",
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	return txn
}

func TestHandleSyncMessage(t *testing.T) {
	repo := newTestRepository(t)
	ledger := &fakeLedger{}
	w := NewMirrorWorker(repo, ledger, 10)
	ctx := context.Background()

	txn := createTransaction(t, repo)

	if err := w.HandleSyncMessage(ctx, amqp.NewTransactionSyncMessage(txn.ID)); err != nil {
		t.Fatalf("HandleSyncMessage() error = %v", err)
	}

	if ledger.count() != 1 {
		t.Errorf("ledger has %d rows, want 1", ledger.count())
	}
	if ledger.rows[0].ID != txn.ID || ledger.rows[0].CustomerName != "Ada Obi" {
		t.Errorf("mirrored row = %+v, want the stored transaction", ledger.rows[0])
	}

	count, err := repo.CountPendingSync(ctx)
	if err != nil {
		t.Fatalf("CountPendingSync() error = %v", err)
	}
	if count != 0 {
		t.Errorf("CountPendingSync() = %d, want 0 after mirror", count)
	}
}

func TestHandleSyncMessageMissingTransaction(t *testing.T) {
	repo := newTestRepository(t)
	ledger := &fakeLedger{}
	w := NewMirrorWorker(repo, ledger, 10)

	// Rows cleared before the mirror catches up are skipped, not retried.
	if err := w.HandleSyncMessage(context.Background(), amqp.NewTransactionSyncMessage(999)); err != nil {
		t.Fatalf("HandleSyncMessage() error = %v, want nil for missing transaction", err)
	}
	if ledger.count() != 0 {
		t.Errorf("ledger has %d rows, want 0", ledger.count())
	}
}

func TestHandleSyncMessageAppendFailure(t *testing.T) {
	repo := newTestRepository(t)
	ledger := &fakeLedger{err: errors.New("sheets unavailable")}
	w := NewMirrorWorker(repo, ledger, 10)
	ctx := context.Background()

	txn := createTransaction(t, repo)

	err := w.HandleSyncMessage(ctx, amqp.NewTransactionSyncMessage(txn.ID))
	if err == nil {
		t.Fatalf("HandleSyncMessage() error = nil, want append failure")
	}

	// The row is marked errored so the sweep stops retrying it.
	count, err := repo.CountPendingSync(ctx)
	if err != nil {
		t.Fatalf("CountPendingSync() error = %v", err)
	}
	if count != 0 {
		t.Errorf("CountPendingSync() = %d, want 0 after error mark", count)
	}
}

func TestProcessPending(t *testing.T) {
	repo := newTestRepository(t)
	ledger := &fakeLedger{}
	w := NewMirrorWorker(repo, ledger, 10)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		createTransaction(t, repo)
	}

	if err := w.ProcessPending(ctx); err != nil {
		t.Fatalf("ProcessPending() error = %v", err)
	}

	if ledger.count() != 3 {
		t.Errorf("ledger has %d rows, want 3", ledger.count())
	}

	count, err := repo.CountPendingSync(ctx)
	if err != nil {
		t.Fatalf("CountPendingSync() error = %v", err)
	}
	if count != 0 {
		t.Errorf("CountPendingSync() = %d, want 0 after sweep", count)
	}

	// A second sweep with nothing pending is a no-op.
	if err := w.ProcessPending(ctx); err != nil {
		t.Fatalf("ProcessPending() on empty backlog error = %v", err)
	}
	if ledger.count() != 3 {
		t.Errorf("ledger has %d rows after empty sweep, want 3", ledger.count())
	}
}

func TestProcessPendingRespectsBatchSize(t *testing.T) {
	repo := newTestRepository(t)
	ledger := &fakeLedger{}
	w := NewMirrorWorker(repo, ledger, 2)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		createTransaction(t, repo)
	}

	if err := w.ProcessPending(ctx); err != nil {
		t.Fatalf("ProcessPending() error = %v", err)
	}
	if ledger.count() != 2 {
		t.Errorf("ledger has %d rows, want batch of 2", ledger.count())
	}
}

func TestStartupSyncCheck(t *testing.T) {
	repo := newTestRepository(t)
	ledger := &fakeLedger{}
	w := NewMirrorWorker(repo, ledger, 2)
	ctx := context.Background()

	// Startup check uses a larger batch than the regular sweep.
	for i := 0; i < 5; i++ {
		createTransaction(t, repo)
	}

	if err := w.StartupSyncCheck(ctx); err != nil {
		t.Fatalf("StartupSyncCheck() error = %v", err)
	}
	if ledger.count() != 5 {
		t.Errorf("ledger has %d rows, want 5", ledger.count())
	}
}
