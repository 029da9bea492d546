package commands_test

import (
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewReleaseOrderCommand(t *testing.T) {
	t.Run("creates a valid command", func(t *testing.T) {
		cmd, err := commands.NewReleaseOrderCommand(kernel.NewUUID(), kernel.NewUUID())

		require.NoError(t, err)
		require.NoError(t, cmd.Validate())
	})

	t.Run("zero value fails validation", func(t *testing.T) {
		var cmd commands.ReleaseOrderCommand

		require.ErrorIs(t, cmd.Validate(), commands.ErrReleaseOrderCommandIsNotConstructed)
	})
}

func TestReleaseOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	o, _ := newStoredOrder(t, order.Ready)
	agentID := kernel.NewUUID()
	require.NoError(t, o.Assign(agentID, time.Now()))
	cmd, err := commands.NewReleaseOrderCommand(o.ID(), agentID)
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	index := new(MockDispatchIndex)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Get", mock.Anything, o.ID()).Return(o, nil).Once(),
		repo.On("ReleaseOrder", mock.Anything, o.ID(), agentID).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
		index.On("PublishReady", mock.Anything, mock.MatchedBy(func(r ports.ReadyOrder) bool {
			return r.OrderID.IsEqual(o.ID())
		})).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Get", mock.Anything, o.ID()).Return(o, nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewReleaseOrderCommandHandler(factory, index, testLogger())
	err = h.Handle(ctx, cmd)

	require.NoError(t, err)
	require.Nil(t, o.AgentID())
	repo.AssertExpectations(t)
	index.AssertExpectations(t)
	index.AssertNotCalled(t, "Retract", mock.Anything, mock.Anything)
}

func TestReleaseOrderCommandHandler_Handle_RetractsWhenAcceptLandsMidRepublish(t *testing.T) {
	ctx := t.Context()
	o, _ := newStoredOrder(t, order.Ready)
	agentID := kernel.NewUUID()
	rival := kernel.NewUUID()
	require.NoError(t, o.Assign(agentID, time.Now()))
	cmd, err := commands.NewReleaseOrderCommand(o.ID(), agentID)
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	index := new(MockDispatchIndex)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Get", mock.Anything, o.ID()).Return(o, nil).Once(),
		repo.On("ReleaseOrder", mock.Anything, o.ID(), agentID).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
		// A competing accept commits between the release commit and the
		// republish; the pool entry it retracted must not be resurrected.
		index.On("PublishReady", mock.Anything, mock.MatchedBy(func(r ports.ReadyOrder) bool {
			return r.OrderID.IsEqual(o.ID())
		})).Run(func(mock.Arguments) {
			require.NoError(t, o.Assign(rival, time.Now()))
		}).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Get", mock.Anything, o.ID()).Return(o, nil).Once(),
		index.On("Retract", mock.Anything, o.ID()).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewReleaseOrderCommandHandler(factory, index, testLogger())
	err = h.Handle(ctx, cmd)

	require.NoError(t, err)
	repo.AssertExpectations(t)
	index.AssertExpectations(t)
}

func TestReleaseOrderCommandHandler_Handle_WrongHolder(t *testing.T) {
	ctx := t.Context()
	o, _ := newStoredOrder(t, order.Ready)
	agentID := kernel.NewUUID()
	cmd, err := commands.NewReleaseOrderCommand(o.ID(), agentID)
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	index := new(MockDispatchIndex)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Get", mock.Anything, o.ID()).Return(o, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewReleaseOrderCommandHandler(factory, index, testLogger())
	err = h.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrPreconditionFailed)
	repo.AssertNotCalled(t, "ReleaseOrder", mock.Anything, mock.Anything, mock.Anything)
	index.AssertNotCalled(t, "PublishReady", mock.Anything, mock.Anything)
}
