package sheets

import (
	"context"

	"studiodesk/internal/core"
)

// Ports for outbound adapters.
type (
	// LedgerAppender appends one transaction row to the mirror ledger and
	// returns a reference to the written row.
	LedgerAppender interface {
		Append(ctx context.Context, txn core.Transaction) (rowRef string, err error)
	}
)
