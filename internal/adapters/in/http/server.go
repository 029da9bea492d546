// Package http exposes the dispatch engine over a JSON API built on Echo.
// Handlers translate requests into commands and queries, and map the shared
// error taxonomy onto HTTP status codes; all business decisions stay in the
// core.
package http

import (
	"net/http"
	"strconv"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// defaultNearbyRadiusKm applies when the feed request carries no radius.
const defaultNearbyRadiusKm = 5.0

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	placeOrderHandler          commands.PlaceOrderCommandHandler
	transitionOrderHandler     commands.TransitionOrderCommandHandler
	acceptOrderHandler         commands.AcceptOrderCommandHandler
	releaseOrderHandler        commands.ReleaseOrderCommandHandler
	updateAgentLocationHandler commands.UpdateAgentLocationCommandHandler
	agentOfflineHandler        commands.AgentOfflineCommandHandler

	nearbyOrdersHandler queries.NearbyOrdersQueryHandler
	getOrderHandler     queries.GetOrderQueryHandler
}

// NewServer creates an HTTP server over the given command and query handlers.
func NewServer(
	placeOrderHandler commands.PlaceOrderCommandHandler,
	transitionOrderHandler commands.TransitionOrderCommandHandler,
	acceptOrderHandler commands.AcceptOrderCommandHandler,
	releaseOrderHandler commands.ReleaseOrderCommandHandler,
	updateAgentLocationHandler commands.UpdateAgentLocationCommandHandler,
	agentOfflineHandler commands.AgentOfflineCommandHandler,
	nearbyOrdersHandler queries.NearbyOrdersQueryHandler,
	getOrderHandler queries.GetOrderQueryHandler,
) *Server {
	return &Server{
		placeOrderHandler:          placeOrderHandler,
		transitionOrderHandler:     transitionOrderHandler,
		acceptOrderHandler:         acceptOrderHandler,
		releaseOrderHandler:        releaseOrderHandler,
		updateAgentLocationHandler: updateAgentLocationHandler,
		agentOfflineHandler:        agentOfflineHandler,
		nearbyOrdersHandler:        nearbyOrdersHandler,
		getOrderHandler:            getOrderHandler,
	}
}

// RegisterRoutes binds the API surface to the Echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.Health)

	api := e.Group("/api/v1")
	api.POST("/orders", s.PlaceOrder)
	api.POST("/orders/:id/transition", s.TransitionOrder)
	api.GET("/orders/:id", s.GetOrder)

	api.GET("/dispatch/nearby", s.NearbyOrders)
	api.POST("/dispatch/accept", s.AcceptOrder)
	api.POST("/dispatch/release", s.ReleaseOrder)

	api.POST("/agents/:id/location", s.UpdateAgentLocation)
	api.POST("/agents/:id/offline", s.AgentOffline)
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ok(ctx, http.StatusOK, map[string]string{"status": "ok"})
}

// PlaceOrder handles POST /api/v1/orders - registers a new pending order.
func (s *Server) PlaceOrder(ctx echo.Context) error {
	var body placeOrderRequest
	if err := ctx.Bind(&body); err != nil {
		return fail(ctx, errs.NewValueIsInvalidError("request body"))
	}

	orderID := kernel.NewUUID()
	if body.OrderID != "" {
		parsed, err := kernel.UUIDFromString(body.OrderID)
		if err != nil {
			return fail(ctx, errs.NewValueIsInvalidError("order_id"))
		}
		orderID = parsed
	}

	vendorID, err := kernel.UUIDFromString(body.VendorID)
	if err != nil {
		return fail(ctx, errs.NewValueIsInvalidError("vendor_id"))
	}

	pickup, err := kernel.NewLocation(body.Pickup.Lat, body.Pickup.Lng)
	if err != nil {
		return fail(ctx, err)
	}
	drop, err := kernel.NewLocation(body.Drop.Lat, body.Drop.Lng)
	if err != nil {
		return fail(ctx, err)
	}

	subtotal, err := kernel.NewMoney(body.Subtotal)
	if err != nil {
		return fail(ctx, err)
	}
	deliveryFee, err := kernel.NewMoney(body.DeliveryFee)
	if err != nil {
		return fail(ctx, err)
	}
	discount, err := kernel.NewMoney(body.Discount)
	if err != nil {
		return fail(ctx, err)
	}

	cmd, err := commands.NewPlaceOrderCommand(
		orderID, vendorID, pickup, drop,
		subtotal, deliveryFee, discount,
		order.PaymentMethod(body.PaymentMethod),
	)
	if err != nil {
		return fail(ctx, err)
	}

	if err := s.placeOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return fail(ctx, err)
	}

	return ok(ctx, http.StatusCreated, placeOrderResponse{OrderID: orderID.String()})
}

// TransitionOrder handles POST /api/v1/orders/:id/transition - moves an order
// along its lifecycle.
func (s *Server) TransitionOrder(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return fail(ctx, errs.NewValueIsInvalidError("order id"))
	}

	var body transitionOrderRequest
	if err := ctx.Bind(&body); err != nil {
		return fail(ctx, errs.NewValueIsInvalidError("request body"))
	}

	target, err := order.StatusFromString(body.Target)
	if err != nil {
		return fail(ctx, err)
	}

	cmd, err := commands.NewTransitionOrderCommand(
		orderID, target, body.ActorID, order.ActorRole(body.ActorRole), body.Note)
	if err != nil {
		return fail(ctx, err)
	}

	if err := s.transitionOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return fail(ctx, err)
	}

	return ok(ctx, http.StatusOK, nil)
}

// GetOrder handles GET /api/v1/orders/:id - the tracking view.
func (s *Server) GetOrder(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return fail(ctx, errs.NewValueIsInvalidError("order id"))
	}

	query, err := queries.NewGetOrderQuery(orderID)
	if err != nil {
		return fail(ctx, err)
	}

	view, err := s.getOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return fail(ctx, err)
	}

	return ok(ctx, http.StatusOK, toOrderViewBody(view))
}

// NearbyOrders handles GET /api/v1/dispatch/nearby - the agent's feed of
// ready orders sorted by pickup distance. When the request carries fresh
// coordinates the agent's presence record is refreshed first, so a single
// round trip both pings and fetches.
func (s *Server) NearbyOrders(ctx echo.Context) error {
	agentID, err := kernel.UUIDFromString(ctx.QueryParam("agent_id"))
	if err != nil {
		return fail(ctx, errs.NewValueIsInvalidError("agent_id"))
	}

	radiusKm := defaultNearbyRadiusKm
	if raw := ctx.QueryParam("radius_km"); raw != "" {
		radiusKm, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return fail(ctx, errs.NewValueIsInvalidError("radius_km"))
		}
	}

	limit := 0
	if raw := ctx.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			return fail(ctx, errs.NewValueIsInvalidError("limit"))
		}
	}

	if latRaw, lngRaw := ctx.QueryParam("lat"), ctx.QueryParam("lng"); latRaw != "" && lngRaw != "" {
		if err := s.refreshPresence(ctx, agentID, latRaw, lngRaw); err != nil {
			return fail(ctx, err)
		}
	}

	query, err := queries.NewNearbyOrdersQuery(agentID, radiusKm, limit)
	if err != nil {
		return fail(ctx, err)
	}

	candidates, err := s.nearbyOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return fail(ctx, err)
	}

	response := make([]candidateBody, len(candidates))
	for i, candidate := range candidates {
		response[i] = toCandidateBody(candidate)
	}

	return ok(ctx, http.StatusOK, response)
}

// AcceptOrder handles POST /api/v1/dispatch/accept - an agent's attempt to
// claim a ready order. Losing the race yields 409.
func (s *Server) AcceptOrder(ctx echo.Context) error {
	cmd, err := bindAssignment(ctx, commands.NewAcceptOrderCommand)
	if err != nil {
		return fail(ctx, err)
	}

	if err := s.acceptOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return fail(ctx, err)
	}

	return ok(ctx, http.StatusOK, nil)
}

// ReleaseOrder handles POST /api/v1/dispatch/release - an agent giving up an
// assignment before pickup.
func (s *Server) ReleaseOrder(ctx echo.Context) error {
	cmd, err := bindAssignment(ctx, commands.NewReleaseOrderCommand)
	if err != nil {
		return fail(ctx, err)
	}

	if err := s.releaseOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return fail(ctx, err)
	}

	return ok(ctx, http.StatusOK, nil)
}

// UpdateAgentLocation handles POST /api/v1/agents/:id/location - one ping of
// the agent's location stream.
func (s *Server) UpdateAgentLocation(ctx echo.Context) error {
	agentID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return fail(ctx, errs.NewValueIsInvalidError("agent id"))
	}

	var body locationPingRequest
	if err := ctx.Bind(&body); err != nil {
		return fail(ctx, errs.NewValueIsInvalidError("request body"))
	}

	location, err := kernel.NewLocation(body.Lat, body.Lng)
	if err != nil {
		return fail(ctx, err)
	}

	cmd, err := commands.NewUpdateAgentLocationCommand(agentID, location, time.Now())
	if err != nil {
		return fail(ctx, err)
	}

	if err := s.updateAgentLocationHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return fail(ctx, err)
	}

	return ok(ctx, http.StatusOK, nil)
}

// AgentOffline handles POST /api/v1/agents/:id/offline - explicit sign-off
// from dispatch.
func (s *Server) AgentOffline(ctx echo.Context) error {
	agentID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return fail(ctx, errs.NewValueIsInvalidError("agent id"))
	}

	cmd, err := commands.NewAgentOfflineCommand(agentID)
	if err != nil {
		return fail(ctx, err)
	}

	if err := s.agentOfflineHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return fail(ctx, err)
	}

	return ok(ctx, http.StatusOK, nil)
}

// bindAssignment parses the shared accept/release body into a command.
func bindAssignment[T any](
	ctx echo.Context,
	construct func(orderID, agentID kernel.UUID) (T, error),
) (T, error) {
	var zero T

	var body assignmentRequest
	if err := ctx.Bind(&body); err != nil {
		return zero, errs.NewValueIsInvalidError("request body")
	}

	orderID, err := kernel.UUIDFromString(body.OrderID)
	if err != nil {
		return zero, errs.NewValueIsInvalidError("order_id")
	}
	agentID, err := kernel.UUIDFromString(body.AgentID)
	if err != nil {
		return zero, errs.NewValueIsInvalidError("agent_id")
	}

	return construct(orderID, agentID)
}

// refreshPresence applies an inline location ping from feed query parameters.
func (s *Server) refreshPresence(ctx echo.Context, agentID kernel.UUID, latRaw, lngRaw string) error {
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil {
		return errs.NewValueIsInvalidError("lat")
	}
	lng, err := strconv.ParseFloat(lngRaw, 64)
	if err != nil {
		return errs.NewValueIsInvalidError("lng")
	}

	location, err := kernel.NewLocation(lat, lng)
	if err != nil {
		return err
	}

	cmd, err := commands.NewUpdateAgentLocationCommand(agentID, location, time.Now())
	if err != nil {
		return err
	}

	return s.updateAgentLocationHandler.Handle(ctx.Request().Context(), cmd)
}

// toCandidateBody converts a dispatch candidate to its response form.
func toCandidateBody(candidate ports.DispatchCandidate) candidateBody {
	return candidateBody{
		OrderID:          candidate.OrderID.String(),
		VendorID:         candidate.VendorID.String(),
		Pickup:           pointBody{Lat: candidate.PickupLocation.Lat(), Lng: candidate.PickupLocation.Lng()},
		Drop:             pointBody{Lat: candidate.DropLocation.Lat(), Lng: candidate.DropLocation.Lng()},
		PickupDistanceKm: candidate.PickupDistanceKm,
		DropDistanceKm:   candidate.DropDistanceKm,
		TotalDistanceKm:  candidate.TotalDistanceKm,
		PostedAt:         candidate.PostedAt,
	}
}

// toOrderViewBody converts the tracking query response to its wire form.
func toOrderViewBody(view queries.GetOrderQueryResponse) orderViewBody {
	body := orderViewBody{
		OrderID:       view.ID.String(),
		VendorID:      view.VendorID.String(),
		Status:        view.Status,
		Subtotal:      view.Subtotal,
		DeliveryFee:   view.DeliveryFee,
		Discount:      view.Discount,
		Total:         view.Total,
		PaymentMethod: view.PaymentMethod,
		PaymentStatus: view.PaymentStatus,
		Version:       view.Version,
		History:       make([]statusChangeBody, len(view.History)),
	}

	if view.AgentID != nil {
		agentID := view.AgentID.String()
		body.AgentID = &agentID
	}

	for i, change := range view.History {
		body.History[i] = statusChangeBody{
			Status:     change.Status,
			OccurredAt: change.OccurredAt,
			ActorID:    change.ActorID,
			Note:       change.Note,
		}
	}

	if view.Earnings != nil {
		body.Earnings = &earningsBody{
			VendorEarnings:   view.Earnings.VendorEarnings,
			DeliveryEarnings: view.Earnings.DeliveryEarnings,
			PlatformEarnings: view.Earnings.PlatformEarnings,
		}
	}

	return body
}
