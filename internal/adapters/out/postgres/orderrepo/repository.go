package orderrepo

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements OrderRepository using GORM.
//
// All mutations are single conditional UPDATEs guarded by the version column
// or the assignment state, so concurrent writers are serialized by the
// database without explicit locks.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new order together with its initial history entries.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update persists the aggregate conditionally on the version it was loaded
// with, bumping the version column. Zero rows affected means a concurrent
// writer got there first.
//
// History rows are appended with an insert that ignores conflicts on the
// (order, seq) key, so already persisted entries are never rewritten.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("id = ? AND version = ?", dto.ID, dto.Version).
		Updates(map[string]any{
			"agent_id":          dto.AgentID,
			"accepted_at":       dto.AcceptedAt,
			"payment_status":    dto.PaymentStatus,
			"status":            dto.Status,
			"vendor_earnings":   dto.VendorEarnings,
			"delivery_earnings": dto.DeliveryEarnings,
			"platform_earnings": dto.PlatformEarnings,
			"version":           dto.Version + 1,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.ErrVersionConflict
	}

	if len(dto.History) > 0 {
		if err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&dto.History).Error; err != nil {
			return err
		}
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves an order by ID with its full status history.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	err := r.db.WithContext(ctx).
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("seq") }).
		First(&dto, "id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAllReadyUnassigned retrieves every ready order with no assigned agent.
// Used to rebuild the dispatch pool at startup.
func (r *GormOrderRepository) GetAllReadyUnassigned(ctx context.Context) ([]*order.Order, error) {
	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("seq") }).
		Find(&dtos, "status = ? AND agent_id IS NULL", int(order.Ready)).Error
	if err != nil {
		return nil, err
	}

	return toDomainAll(dtos)
}

// GetReadyAssignedBefore retrieves ready orders whose assignment was
// established before the cutoff. Feeds the stuck-assignment release policy.
func (r *GormOrderRepository) GetReadyAssignedBefore(
	ctx context.Context,
	cutoff time.Time,
) ([]*order.Order, error) {
	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("seq") }).
		Find(&dtos, "status = ? AND agent_id IS NOT NULL AND accepted_at < ?",
			int(order.Ready), cutoff).Error
	if err != nil {
		return nil, err
	}

	return toDomainAll(dtos)
}

// AcceptOrder atomically binds agentID to the order. The write succeeds only
// while the order is ready, unassigned and at the version the caller
// observed, so N racing acceptors yield exactly one winner.
func (r *GormOrderRepository) AcceptOrder(
	ctx context.Context,
	id kernel.UUID,
	agentID kernel.UUID,
	observedVersion int64,
	acceptedAt time.Time,
) error {
	if err := errors.Join(id.Validate(), agentID.Validate()); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("id = ? AND agent_id IS NULL AND status = ? AND version = ?",
			id.Bytes(), int(order.Ready), observedVersion).
		Updates(map[string]any{
			"agent_id":    agentID.Bytes(),
			"accepted_at": acceptedAt,
			"version":     observedVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.ErrAlreadyAssigned
	}

	return nil
}

// ReleaseOrder atomically clears an assignment held by agentID while the
// order is still ready, returning it to the dispatch pool.
func (r *GormOrderRepository) ReleaseOrder(
	ctx context.Context,
	id kernel.UUID,
	agentID kernel.UUID,
) error {
	if err := errors.Join(id.Validate(), agentID.Validate()); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("id = ? AND agent_id = ? AND status = ?",
			id.Bytes(), agentID.Bytes(), int(order.Ready)).
		Updates(map[string]any{
			"agent_id":    nil,
			"accepted_at": nil,
			"version":     gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewPreconditionFailedError("order is not held by this agent in ready status")
	}

	return nil
}

// toDomainAll converts a batch of rows to aggregates.
func toDomainAll(dtos []OrderDTO) ([]*order.Order, error) {
	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	return orders, nil
}
