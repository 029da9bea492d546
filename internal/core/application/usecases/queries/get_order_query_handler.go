package queries

import (
	"context"
	"database/sql"
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetOrderQueryHandler serves the order tracking view straight from the
// database, bypassing the aggregate: reads take no part in the optimistic
// concurrency protocol.
type GetOrderQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderQueryHandler creates a handler for order tracking queries.
// Requires a GORM database connection for query execution.
func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle executes the query, returning the order row together with its full
// status history in commit order.
func (h GetOrderQueryHandler) Handle(
	ctx context.Context,
	query GetOrderQuery,
) (GetOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderQueryResponse{}, err
	}

	var (
		id, vendorID     uuid.UUID
		agentID          uuid.NullUUID
		status           int
		vendorEarnings   sql.NullInt64
		deliveryEarnings sql.NullInt64
		platformEarnings sql.NullInt64
		response         GetOrderQueryResponse
	)

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			vendor_id,
			agent_id,
			subtotal,
			delivery_fee,
			discount,
			total,
			payment_method,
			payment_status,
			status,
			vendor_earnings,
			delivery_earnings,
			platform_earnings,
			version
		FROM orders
		WHERE id = ?
	`, query.OrderID().Bytes()).Row()

	err := row.Scan(
		&id,
		&vendorID,
		&agentID,
		&response.Subtotal,
		&response.DeliveryFee,
		&response.Discount,
		&response.Total,
		&response.PaymentMethod,
		&response.PaymentStatus,
		&status,
		&vendorEarnings,
		&deliveryEarnings,
		&platformEarnings,
		&response.Version,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return GetOrderQueryResponse{}, errs.NewObjectNotFoundError("order", query.OrderID().String())
	}
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	if response.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return GetOrderQueryResponse{}, err
	}
	if response.VendorID, err = kernel.UUIDFromBytes(vendorID[:]); err != nil {
		return GetOrderQueryResponse{}, err
	}
	if agentID.Valid {
		restored, idErr := kernel.UUIDFromBytes(agentID.UUID[:])
		if idErr != nil {
			return GetOrderQueryResponse{}, idErr
		}
		response.AgentID = &restored
	}

	response.Status = order.Status(status).String()

	if vendorEarnings.Valid && deliveryEarnings.Valid && platformEarnings.Valid {
		response.Earnings = &EarningsResponse{
			VendorEarnings:   vendorEarnings.Int64,
			DeliveryEarnings: deliveryEarnings.Int64,
			PlatformEarnings: platformEarnings.Int64,
		}
	}

	history, err := h.loadHistory(ctx, query.OrderID())
	if err != nil {
		return GetOrderQueryResponse{}, err
	}
	response.History = history

	return response, nil
}

// loadHistory fetches the order's status changes in commit order.
func (h GetOrderQueryHandler) loadHistory(
	ctx context.Context,
	orderID kernel.UUID,
) ([]StatusChangeResponse, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			status,
			occurred_at,
			actor_id,
			note
		FROM order_status_changes
		WHERE order_id = ?
		ORDER BY seq
	`, orderID.Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make([]StatusChangeResponse, 0)
	for rows.Next() {
		var (
			entry  StatusChangeResponse
			status int
		)
		if err = rows.Scan(&status, &entry.OccurredAt, &entry.ActorID, &entry.Note); err != nil {
			return nil, err
		}

		entry.Status = order.Status(status).String()
		history = append(history, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return history, nil
}
