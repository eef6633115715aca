package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"studiodesk/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Sync states for the Google Sheets mirror bookkeeping.
const (
	SyncStatusPending = "pending"
	SyncStatusSynced  = "synced"
	SyncStatusError   = "error"
)

// ClearCounts reports how many rows a ClearAll removed per table.
type ClearCounts struct {
	Transactions int64
	Messages     int64
}

// PendingSyncTransaction is the minimal row data queued for mirror sync.
type PendingSyncTransaction struct {
	ID        int64
	CreatedAt time.Time
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping verifies the database connection is still usable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

const transactionColumns = `id, customer_name, phone_number, service, amount_paid, service_by, expenses, date, created_at`

// CreateTransaction inserts a validated transaction. The date must already be
// normalized to YYYY-MM-DD. The created_at stamp comes from SQLite so that
// stored and returned values always agree.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	var (
		id        int64
		createdAt time.Time
	)
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO transactions (customer_name, phone_number, service, amount_paid, service_by, expenses, date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 RETURNING id, created_at`,
		in.CustomerName, in.PhoneNumber, in.Service, in.AmountPaid, in.ServiceBy, in.Expenses, in.Date,
	).Scan(&id, &createdAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	txn := core.Transaction{
		ID:           id,
		CustomerName: in.CustomerName,
		PhoneNumber:  in.PhoneNumber,
		Service:      in.Service,
		AmountPaid:   in.AmountPaid,
		ServiceBy:    in.ServiceBy,
		Expenses:     in.Expenses,
		Date:         in.Date,
		CreatedAt:    createdAt,
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", txn.ID,
		"customer", txn.CustomerName,
		"service", txn.Service,
		"amount_paid", txn.AmountPaid,
		"date", txn.Date)

	return txn, nil
}

// ListTransactions returns transactions newest first, optionally restricted
// to a period window.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, filter core.PeriodFilter) ([]core.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions`
	var args []any

	switch {
	case filter.Exact != "":
		query += ` WHERE date = ?`
		args = append(args, filter.Exact)
	case filter.From != "":
		query += ` WHERE date >= ?`
		args = append(args, filter.From)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	transactions := []core.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return transactions, nil
}

// GetTransaction retrieves a single transaction by ID. Returns ErrNotFound
// when the row no longer exists, which happens after a clear-all.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (*core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)

	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get transaction %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return &txn, nil
}

// CreateMessage inserts a chat message. The display time is rendered once at
// insert and stored with the row, so it never shifts if the server timezone
// changes later.
func (r *SQLiteRepository) CreateMessage(ctx context.Context, in core.MessageInput) (core.Message, error) {
	displayTime := core.FormatDisplayTime(time.Now())

	var (
		id        int64
		createdAt time.Time
	)
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO messages (text, sender, display_time) VALUES (?, ?, ?) RETURNING id, created_at`,
		in.Text, in.Sender, displayTime,
	).Scan(&id, &createdAt)
	if err != nil {
		return core.Message{}, fmt.Errorf("create message: %w", err)
	}

	msg := core.Message{
		ID:          id,
		Text:        in.Text,
		Sender:      in.Sender,
		CreatedAt:   createdAt,
		DisplayTime: displayTime,
	}

	slog.InfoContext(ctx, "Message saved", "id", msg.ID, "sender", msg.Sender)

	return msg, nil
}

// ListMessages returns all messages oldest first, the order a chat reads in.
func (r *SQLiteRepository) ListMessages(ctx context.Context) ([]core.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, text, sender, display_time, created_at FROM messages ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := []core.Message{}
	for rows.Next() {
		var msg core.Message
		if err := rows.Scan(&msg.ID, &msg.Text, &msg.Sender, &msg.DisplayTime, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return messages, nil
}

// ClearAll deletes every transaction and message in a single database
// transaction, so a failure leaves both tables untouched.
func (r *SQLiteRepository) ClearAll(ctx context.Context) (ClearCounts, error) {
	var counts ClearCounts

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return counts, fmt.Errorf("begin clear transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM transactions`)
	if err != nil {
		return counts, fmt.Errorf("clear transactions: %w", err)
	}
	if counts.Transactions, err = res.RowsAffected(); err != nil {
		return counts, fmt.Errorf("count cleared transactions: %w", err)
	}

	res, err = tx.ExecContext(ctx, `DELETE FROM messages`)
	if err != nil {
		return counts, fmt.Errorf("clear messages: %w", err)
	}
	if counts.Messages, err = res.RowsAffected(); err != nil {
		return counts, fmt.Errorf("count cleared messages: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return counts, fmt.Errorf("commit clear: %w", err)
	}

	slog.InfoContext(ctx, "All data cleared",
		"transactions", counts.Transactions,
		"messages", counts.Messages)

	return counts, nil
}

// GetPendingSyncTransactions returns transactions awaiting mirror sync,
// oldest first so the mirror preserves insertion order.
func (r *SQLiteRepository) GetPendingSyncTransactions(ctx context.Context, limit int) ([]PendingSyncTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, created_at FROM transactions WHERE sync_status = ? ORDER BY id ASC LIMIT ?`,
		SyncStatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync transactions: %w", err)
	}
	defer rows.Close()

	pending := []PendingSyncTransaction{}
	for rows.Next() {
		var p PendingSyncTransaction
		if err := rows.Scan(&p.ID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending sync transaction: %w", err)
		}
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending sync transactions: %w", err)
	}

	return pending, nil
}

// CountPendingSync returns how many transactions still await mirror sync.
func (r *SQLiteRepository) CountPendingSync(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE sync_status = ?`, SyncStatusPending).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pending sync: %w", err)
	}
	return count, nil
}

// MarkSynced marks a transaction as successfully mirrored.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = ?, synced_at = CURRENT_TIMESTAMP WHERE id = ?`,
		SyncStatusSynced, id)
	if err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}

	slog.InfoContext(ctx, "Transaction marked as synced", "id", id)
	return nil
}

// MarkSyncError marks a transaction whose mirror append failed.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = ? WHERE id = ?`,
		SyncStatusError, id)
	if err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}

	slog.WarnContext(ctx, "Transaction marked with sync error", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var txn core.Transaction
	err := row.Scan(
		&txn.ID,
		&txn.CustomerName,
		&txn.PhoneNumber,
		&txn.Service,
		&txn.AmountPaid,
		&txn.ServiceBy,
		&txn.Expenses,
		&txn.Date,
		&txn.CreatedAt,
	)
	return txn, err
}
