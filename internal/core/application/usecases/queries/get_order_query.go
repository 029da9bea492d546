package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery retrieves a single order with its full status history.
// This is the customer/vendor tracking view.
type GetOrderQuery struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetOrderQuery creates a query for one order.
func NewGetOrderQuery(orderID kernel.UUID) (GetOrderQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderQuery{}, err
	}

	return GetOrderQuery{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

// OrderID returns the requested order.
func (q GetOrderQuery) OrderID() kernel.UUID {
	return q.orderID
}

// GetOrderQueryResponse is the tracking view of an order: current state,
// monetary breakdown, the append-only history and the earnings split once
// recorded.
type GetOrderQueryResponse struct {
	ID            kernel.UUID
	VendorID      kernel.UUID
	Status        string
	AgentID       *kernel.UUID
	Subtotal      int64
	DeliveryFee   int64
	Discount      int64
	Total         int64
	PaymentMethod string
	PaymentStatus string
	Version       int64
	History       []StatusChangeResponse
	Earnings      *EarningsResponse
}

// StatusChangeResponse is one history entry in the tracking view.
type StatusChangeResponse struct {
	Status     string
	OccurredAt time.Time
	ActorID    string
	Note       string
}

// EarningsResponse is the recorded split in the tracking view, in cents.
type EarningsResponse struct {
	VendorEarnings   int64
	DeliveryEarnings int64
	PlatformEarnings int64
}
