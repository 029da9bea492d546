package http

import "time"

// envelope is the uniform response wrapper: data on success, a single error
// object on failure.
type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// pointBody is a coordinate pair in decimal degrees.
type pointBody struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// placeOrderRequest is the body of POST /api/v1/orders. Amounts are integer
// cents. OrderID is optional; one is generated when absent so clients may
// supply their own idempotency identifier.
type placeOrderRequest struct {
	OrderID       string    `json:"order_id,omitempty"`
	VendorID      string    `json:"vendor_id"`
	Pickup        pointBody `json:"pickup"`
	Drop          pointBody `json:"drop"`
	Subtotal      int64     `json:"subtotal"`
	DeliveryFee   int64     `json:"delivery_fee"`
	Discount      int64     `json:"discount"`
	PaymentMethod string    `json:"payment_method"`
}

type placeOrderResponse struct {
	OrderID string `json:"order_id"`
}

// transitionOrderRequest is the body of POST /api/v1/orders/:id/transition.
type transitionOrderRequest struct {
	Target    string `json:"target"`
	ActorID   string `json:"actor_id"`
	ActorRole string `json:"actor_role"`
	Note      string `json:"note,omitempty"`
}

// assignmentRequest is the body of the dispatch accept and release endpoints.
type assignmentRequest struct {
	OrderID string `json:"order_id"`
	AgentID string `json:"agent_id"`
}

// locationPingRequest is the body of POST /api/v1/agents/:id/location.
type locationPingRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// candidateBody is one dispatch feed entry of GET /api/v1/dispatch/nearby.
type candidateBody struct {
	OrderID          string    `json:"order_id"`
	VendorID         string    `json:"vendor_id"`
	Pickup           pointBody `json:"pickup"`
	Drop             pointBody `json:"drop"`
	PickupDistanceKm float64   `json:"pickup_distance_km"`
	DropDistanceKm   float64   `json:"drop_distance_km"`
	TotalDistanceKm  float64   `json:"total_distance_km"`
	PostedAt         time.Time `json:"posted_at"`
}

// orderViewBody is the tracking view of GET /api/v1/orders/:id.
type orderViewBody struct {
	OrderID       string             `json:"order_id"`
	VendorID      string             `json:"vendor_id"`
	Status        string             `json:"status"`
	AgentID       *string            `json:"agent_id,omitempty"`
	Subtotal      int64              `json:"subtotal"`
	DeliveryFee   int64              `json:"delivery_fee"`
	Discount      int64              `json:"discount"`
	Total         int64              `json:"total"`
	PaymentMethod string             `json:"payment_method"`
	PaymentStatus string             `json:"payment_status"`
	Version       int64              `json:"version"`
	History       []statusChangeBody `json:"history"`
	Earnings      *earningsBody      `json:"earnings,omitempty"`
}

type statusChangeBody struct {
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
	ActorID    string    `json:"actor_id,omitempty"`
	Note       string    `json:"note,omitempty"`
}

type earningsBody struct {
	VendorEarnings   int64 `json:"vendor_earnings"`
	DeliveryEarnings int64 `json:"delivery_earnings"`
	PlatformEarnings int64 `json:"platform_earnings"`
}
