// Package orderrepo persists order aggregates with GORM. It maps the
// aggregate to an orders row plus append-only order_status_changes child
// rows, and implements the conditional writes behind the optimistic version
// check and the accept/release compare-and-set.
package orderrepo

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO is the database row for an order aggregate. Monetary amounts are
// integer cents; the three earnings columns stay NULL until the terminal
// split is recorded. The version column backs the optimistic concurrency
// protocol: every conditional update compares and bumps it.
type OrderDTO struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	VendorID         uuid.UUID  `gorm:"type:uuid;index"`
	PickupLat        float64    `gorm:"type:double precision"`
	PickupLng        float64    `gorm:"type:double precision"`
	DropLat          float64    `gorm:"type:double precision"`
	DropLng          float64    `gorm:"type:double precision"`
	AgentID          *uuid.UUID `gorm:"type:uuid;index"`
	AcceptedAt       *time.Time
	Subtotal         int64
	DeliveryFee      int64
	Discount         int64
	Total            int64
	PaymentMethod    string
	PaymentStatus    string
	Status           int `gorm:"index"`
	VendorEarnings   *int64
	DeliveryEarnings *int64
	PlatformEarnings *int64
	Version          int64

	History []StatusChangeDTO `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName overrides GORM's default naming convention to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// StatusChangeDTO is one row of the append-only status history. The (order,
// seq) composite key makes history writes idempotent: replaying an already
// persisted entry conflicts on the key and is dropped.
type StatusChangeDTO struct {
	OrderID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq        int       `gorm:"primaryKey;autoIncrement:false"`
	Status     int
	OccurredAt time.Time
	ActorID    string
	Note       string
}

// TableName overrides GORM's default naming convention to use "order_status_changes".
func (StatusChangeDTO) TableName() string {
	return "order_status_changes"
}

// fromDomain converts an order aggregate to its database representation,
// including the full status history numbered from 1.
func fromDomain(aggregate *order.Order) OrderDTO {
	var agentID *uuid.UUID
	if id := aggregate.AgentID(); id != nil {
		raw := id.Bytes()
		agentID = &raw
	}

	var vendorEarnings, deliveryEarnings, platformEarnings *int64
	if split := aggregate.EarningsSplit(); split != nil {
		v := split.VendorEarnings().Cents()
		d := split.DeliveryEarnings().Cents()
		p := split.PlatformEarnings().Cents()
		vendorEarnings, deliveryEarnings, platformEarnings = &v, &d, &p
	}

	history := aggregate.History()
	changes := make([]StatusChangeDTO, 0, len(history))
	for i, change := range history {
		changes = append(changes, StatusChangeDTO{
			OrderID:    aggregate.ID().Bytes(),
			Seq:        i + 1,
			Status:     int(change.Status),
			OccurredAt: change.OccurredAt,
			ActorID:    change.ActorID,
			Note:       change.Note,
		})
	}

	return OrderDTO{
		ID:               aggregate.ID().Bytes(),
		VendorID:         aggregate.VendorID().Bytes(),
		PickupLat:        aggregate.PickupLocation().Lat(),
		PickupLng:        aggregate.PickupLocation().Lng(),
		DropLat:          aggregate.DropLocation().Lat(),
		DropLng:          aggregate.DropLocation().Lng(),
		AgentID:          agentID,
		AcceptedAt:       aggregate.AcceptedAt(),
		Subtotal:         aggregate.Subtotal().Cents(),
		DeliveryFee:      aggregate.DeliveryFee().Cents(),
		Discount:         aggregate.Discount().Cents(),
		Total:            aggregate.Total().Cents(),
		PaymentMethod:    string(aggregate.PaymentMethod()),
		PaymentStatus:    string(aggregate.PaymentStatus()),
		Status:           int(aggregate.Status()),
		VendorEarnings:   vendorEarnings,
		DeliveryEarnings: deliveryEarnings,
		PlatformEarnings: platformEarnings,
		Version:          aggregate.Version(),
	}
}

// toDomain converts a database row back to an order aggregate, restoring the
// status history in seq order and the earnings split when all three columns
// are present.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	vendorID, err := kernel.UUIDFromBytes(dto.VendorID[:])
	if err != nil {
		return nil, err
	}

	pickup, err := kernel.NewLocation(dto.PickupLat, dto.PickupLng)
	if err != nil {
		return nil, err
	}

	drop, err := kernel.NewLocation(dto.DropLat, dto.DropLng)
	if err != nil {
		return nil, err
	}

	var agentID *kernel.UUID
	if dto.AgentID != nil {
		restored, agentErr := kernel.UUIDFromBytes((*dto.AgentID)[:])
		if agentErr != nil {
			return nil, agentErr
		}
		agentID = &restored
	}

	subtotal, err := kernel.NewMoney(dto.Subtotal)
	if err != nil {
		return nil, err
	}
	deliveryFee, err := kernel.NewMoney(dto.DeliveryFee)
	if err != nil {
		return nil, err
	}
	discount, err := kernel.NewMoney(dto.Discount)
	if err != nil {
		return nil, err
	}
	total, err := kernel.NewMoney(dto.Total)
	if err != nil {
		return nil, err
	}

	var earnings *order.EarningsSplit
	if dto.VendorEarnings != nil && dto.DeliveryEarnings != nil && dto.PlatformEarnings != nil {
		vendorShare, splitErr := kernel.NewMoney(*dto.VendorEarnings)
		if splitErr != nil {
			return nil, splitErr
		}
		deliveryShare, splitErr := kernel.NewMoney(*dto.DeliveryEarnings)
		if splitErr != nil {
			return nil, splitErr
		}
		platformShare, splitErr := kernel.NewMoney(*dto.PlatformEarnings)
		if splitErr != nil {
			return nil, splitErr
		}
		split := order.NewEarningsSplit(vendorShare, deliveryShare, platformShare)
		earnings = &split
	}

	history := make([]order.StatusChange, 0, len(dto.History))
	for _, change := range dto.History {
		history = append(history, order.StatusChange{
			Status:     order.Status(change.Status),
			OccurredAt: change.OccurredAt,
			ActorID:    change.ActorID,
			Note:       change.Note,
		})
	}

	return order.RestoreOrder(
		id,
		vendorID,
		pickup,
		drop,
		subtotal,
		deliveryFee,
		discount,
		total,
		order.PaymentMethod(dto.PaymentMethod),
		order.PaymentStatus(dto.PaymentStatus),
		order.Status(dto.Status),
		agentID,
		dto.AcceptedAt,
		dto.Version,
		history,
		earnings,
	)
}
