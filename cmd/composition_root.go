package cmd

import (
	"context"
	"log/slog"

	httpin "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/ports"
	"dispatch/internal/jobs"

	"gorm.io/gorm"
)

type CompositionRoot struct {
	config        Config
	gormDB        *gorm.DB
	uowFactory    postgres.GormUnitOfWorkFactory
	dispatchIndex ports.DispatchIndex
	vendorConfig  ports.VendorConfig
	publisher     ports.TransitionPublisher
	logger        *slog.Logger
}

func NewCompositionRoot(
	config Config,
	gormDB *gorm.DB,
	dispatchIndex ports.DispatchIndex,
	vendorConfig ports.VendorConfig,
	publisher ports.TransitionPublisher,
	logger *slog.Logger,
) CompositionRoot {
	return CompositionRoot{
		config:        config,
		gormDB:        gormDB,
		uowFactory:    *postgres.NewGormUnitOfWorkFactory(gormDB),
		dispatchIndex: dispatchIndex,
		vendorConfig:  vendorConfig,
		publisher:     publisher,
		logger:        logger,
	}
}

func (c *CompositionRoot) CreatePlaceOrderCommandHandler() commands.PlaceOrderCommandHandler {
	return commands.NewPlaceOrderCommandHandler(c.orderUoWFactory())
}

func (c *CompositionRoot) CreateTransitionOrderCommandHandler() commands.TransitionOrderCommandHandler {
	return commands.NewTransitionOrderCommandHandler(
		c.uoWFactory(), c.vendorConfig, c.dispatchIndex, c.publisher, c.logger)
}

func (c *CompositionRoot) CreateAcceptOrderCommandHandler() commands.AcceptOrderCommandHandler {
	return commands.NewAcceptOrderCommandHandler(c.orderUoWFactory(), c.dispatchIndex, c.logger)
}

func (c *CompositionRoot) CreateReleaseOrderCommandHandler() commands.ReleaseOrderCommandHandler {
	return commands.NewReleaseOrderCommandHandler(c.orderUoWFactory(), c.dispatchIndex, c.logger)
}

func (c *CompositionRoot) CreateUpdateAgentLocationCommandHandler() commands.UpdateAgentLocationCommandHandler {
	return commands.NewUpdateAgentLocationCommandHandler(c.dispatchIndex)
}

func (c *CompositionRoot) CreateAgentOfflineCommandHandler() commands.AgentOfflineCommandHandler {
	return commands.NewAgentOfflineCommandHandler(c.dispatchIndex)
}

func (c *CompositionRoot) CreateReleaseStaleAssignmentsCommandHandler() commands.ReleaseStaleAssignmentsCommandHandler {
	return commands.NewReleaseStaleAssignmentsCommandHandler(c.orderUoWFactory(), c.dispatchIndex, c.logger)
}

func (c *CompositionRoot) CreateNearbyOrdersQueryHandler() queries.NearbyOrdersQueryHandler {
	return queries.NewNearbyOrdersQueryHandler(c.dispatchIndex)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(
		c.CreatePlaceOrderCommandHandler(),
		c.CreateTransitionOrderCommandHandler(),
		c.CreateAcceptOrderCommandHandler(),
		c.CreateReleaseOrderCommandHandler(),
		c.CreateUpdateAgentLocationCommandHandler(),
		c.CreateAgentOfflineCommandHandler(),
		c.CreateNearbyOrdersQueryHandler(),
		c.CreateGetOrderQueryHandler(),
	)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreateReleaseStaleAssignmentsCommandHandler(),
		c.dispatchIndex,
		c.config.AssignmentTimeout,
		c.config.AgentLivenessWindow,
		c.logger,
	)
}

// RebuildDispatchPool republishes every ready unassigned order into the
// dispatch index. The repository is the source of truth; the in-memory pool
// starts empty on every boot and is reconstructed from it.
func (c *CompositionRoot) RebuildDispatchPool(ctx context.Context) (int, error) {
	repo := c.uowFactory.Create().OrderRepository()

	aggregates, err := repo.GetAllReadyUnassigned(ctx)
	if err != nil {
		return 0, err
	}

	for _, aggregate := range aggregates {
		ready := ports.ReadyOrder{
			OrderID:        aggregate.ID(),
			VendorID:       aggregate.VendorID(),
			PickupLocation: aggregate.PickupLocation(),
			DropLocation:   aggregate.DropLocation(),
		}
		if at := aggregate.ReadyAt(); at != nil {
			ready.PostedAt = *at
		}

		if err := c.dispatchIndex.PublishReady(ctx, ready); err != nil {
			return 0, err
		}
	}

	return len(aggregates), nil
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) uoWFactory() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

// LogTransitionPublisher is the fallback notification sink used when no AMQP
// broker is configured: transitions are written to the log instead of a queue.
type LogTransitionPublisher struct {
	logger *slog.Logger
}

func NewLogTransitionPublisher(logger *slog.Logger) *LogTransitionPublisher {
	return &LogTransitionPublisher{logger: logger.With("component", "transition_publisher")}
}

func (p *LogTransitionPublisher) Publish(ctx context.Context, event ports.TransitionEvent) error {
	p.logger.InfoContext(ctx, "order transitioned",
		"order_id", event.OrderID.String(),
		"old_status", event.OldStatus.String(),
		"new_status", event.NewStatus.String(),
		"occurred_at", event.OccurredAt)
	return nil
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
