package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// LedgerEntry is one immutable row of the earnings ledger: the split recorded
// for an order at the moment it reached a terminal status.
type LedgerEntry struct {
	OrderID    kernel.UUID
	Split      order.EarningsSplit
	RecordedAt time.Time
}

// EarningsLedger is the durable, append-only record of computed splits.
// It enforces the write-once invariant at the storage boundary: a second
// Record for the same order fails with errs.ErrDuplicateEntry regardless of
// what the caller believes the order's state to be.
type EarningsLedger interface {
	// Record appends the split for an order. Fails with errs.ErrDuplicateEntry
	// when an entry already exists for that order.
	Record(ctx context.Context, entry LedgerEntry) error

	// Get retrieves the recorded entry for an order. Fails with
	// errs.ErrObjectNotFound when absent.
	Get(ctx context.Context, orderID kernel.UUID) (LedgerEntry, error)
}
