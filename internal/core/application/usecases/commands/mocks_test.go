package commands_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetAllReadyUnassigned(ctx context.Context) ([]*order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetReadyAssignedBefore(ctx context.Context, cutoff time.Time) ([]*order.Order, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) AcceptOrder(
	ctx context.Context, id, agentID kernel.UUID, observedVersion int64, acceptedAt time.Time,
) error {
	args := m.Called(ctx, id, agentID, observedVersion, acceptedAt)
	return args.Error(0)
}

func (m *MockOrderRepository) ReleaseOrder(ctx context.Context, id, agentID kernel.UUID) error {
	args := m.Called(ctx, id, agentID)
	return args.Error(0)
}

type MockEarningsLedger struct{ mock.Mock }

func (m *MockEarningsLedger) Record(ctx context.Context, entry ports.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockEarningsLedger) Get(ctx context.Context, orderID kernel.UUID) (ports.LedgerEntry, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(ports.LedgerEntry), args.Error(1)
}

type MockOrderUoW struct{ mock.Mock }

func (m *MockOrderUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockUoW struct{ MockOrderUoW }

func (m *MockUoW) EarningsLedger() ports.EarningsLedger {
	args := m.Called()
	return args.Get(0).(ports.EarningsLedger)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockDispatchIndex struct{ mock.Mock }

func (m *MockDispatchIndex) PublishReady(ctx context.Context, ready ports.ReadyOrder) error {
	args := m.Called(ctx, ready)
	return args.Error(0)
}

func (m *MockDispatchIndex) Retract(ctx context.Context, orderID kernel.UUID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockDispatchIndex) UpdateAgentLocation(
	ctx context.Context, agentID kernel.UUID, location kernel.Location, seenAt time.Time,
) error {
	args := m.Called(ctx, agentID, location, seenAt)
	return args.Error(0)
}

func (m *MockDispatchIndex) MarkAgentOffline(ctx context.Context, agentID kernel.UUID) error {
	args := m.Called(ctx, agentID)
	return args.Error(0)
}

func (m *MockDispatchIndex) NearbyOrders(
	ctx context.Context, agentID kernel.UUID, radiusKm float64, limit int,
) ([]ports.DispatchCandidate, error) {
	args := m.Called(ctx, agentID, radiusKm, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.DispatchCandidate), args.Error(1)
}

func (m *MockDispatchIndex) RemoveAgentsInactiveSince(ctx context.Context, cutoff time.Time) (int, error) {
	args := m.Called(ctx, cutoff)
	return args.Int(0), args.Error(1)
}

type MockVendorConfig struct{ mock.Mock }

func (m *MockVendorConfig) GetCommissionRate(ctx context.Context, vendorID kernel.UUID) (float64, error) {
	args := m.Called(ctx, vendorID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockVendorConfig) GetDeliveryFeeTable(ctx context.Context) ([]services.FeeBand, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.FeeBand), args.Error(1)
}

type MockTransitionPublisher struct{ mock.Mock }

func (m *MockTransitionPublisher) Publish(ctx context.Context, event ports.TransitionEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testLocation(t *testing.T, lat, lng float64) kernel.Location {
	t.Helper()
	location, err := kernel.NewLocation(lat, lng)
	require.NoError(t, err)
	return location
}

// newStoredOrder builds an order advanced along the happy path to target, as
// a repository would return it. Returns the order and the assigned agent ID
// (zero value if the path never assigned one).
func newStoredOrder(t *testing.T, target order.Status) (*order.Order, kernel.UUID) {
	t.Helper()

	o, err := order.NewOrder(
		kernel.NewUUID(), kernel.NewUUID(),
		testLocation(t, 48.8566, 2.3522), testLocation(t, 48.8606, 2.3376),
		2000, 500, 200, order.PaymentCard, time.Now(),
	)
	require.NoError(t, err)

	agentID := kernel.NewUUID()
	path := []order.Status{
		order.Confirmed, order.Preparing, order.Ready,
		order.PickedUp, order.OnTheWay, order.Delivered,
	}
	for _, next := range path {
		if o.Status() == target {
			break
		}
		actorID := "vendor-1"
		if next == order.PickedUp {
			require.NoError(t, o.Assign(agentID, time.Now()))
		}
		if next == order.PickedUp || next == order.OnTheWay || next == order.Delivered {
			actorID = agentID.String()
		}
		require.NoError(t, o.TransitionTo(next, actorID, "", time.Now()))
	}
	return o, agentID
}
