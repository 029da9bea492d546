package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// TransitionEvent notifies external consumers that an order moved between
// statuses. Events are emitted after the transition commits.
type TransitionEvent struct {
	OrderID    kernel.UUID
	OldStatus  order.Status
	NewStatus  order.Status
	OccurredAt time.Time
}

// TransitionPublisher is the at-least-once notification sink for transition
// events. Publish failures are logged by the caller and never roll back the
// transition; consumers must tolerate duplicates.
type TransitionPublisher interface {
	Publish(ctx context.Context, event TransitionEvent) error
}
