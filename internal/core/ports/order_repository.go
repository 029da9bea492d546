// Package ports defines the boundary contracts between the application core
// and infrastructure: repositories, the dispatch index, the earnings ledger,
// the notification sink and the vendor configuration provider. These
// interfaces enable dependency inversion and testability.
package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
//
// Mutations follow the optimistic concurrency discipline: Update persists
// conditionally on the version the aggregate was loaded with and fails with
// ErrVersionConflict when a concurrent writer got there first. AcceptOrder
// and ReleaseOrder are the assignment compare-and-set primitives; they are
// single conditional writes so that N racing acceptors yield exactly one
// winner without any lock.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	// The order must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate, conditionally on
	// the version it was loaded with. Fails with errs.ErrVersionConflict when
	// the stored version has moved on.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier, including its
	// full status history. Fails with errs.ErrObjectNotFound when absent.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetAllReadyUnassigned retrieves every order in ready status with no
	// assigned agent. Used to rebuild the dispatch pool at startup.
	GetAllReadyUnassigned(ctx context.Context) ([]*order.Order, error)

	// GetReadyAssignedBefore retrieves orders still in ready status whose
	// assignment was established before the cutoff. Feeds the stuck-assignment
	// release policy.
	GetReadyAssignedBefore(ctx context.Context, cutoff time.Time) ([]*order.Order, error)

	// AcceptOrder atomically binds agentID to the order: a single conditional
	// write that succeeds only while the order is ready, unassigned and at the
	// version the caller observed. Fails with errs.ErrAlreadyAssigned when the
	// condition no longer holds.
	AcceptOrder(ctx context.Context, id kernel.UUID, agentID kernel.UUID, observedVersion int64, acceptedAt time.Time) error

	// ReleaseOrder atomically clears an assignment held by agentID while the
	// order is still ready, returning it to the dispatch pool. Fails with
	// errs.ErrPreconditionFailed when the order is not held by that agent in
	// ready status.
	ReleaseOrder(ctx context.Context, id kernel.UUID, agentID kernel.UUID) error
}
