package order

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// Domain errors for order operations.
var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created
	// through NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder constructor")
	// ErrActorIsRequired is returned when a transition is attempted without an acting party.
	ErrActorIsRequired = errs.NewValueIsRequiredError("actorID")
	// ErrTotalMismatch is returned when total != subtotal + deliveryFee - discount.
	ErrTotalMismatch = errs.NewValueIsInvalidError("total must equal subtotal + deliveryFee - discount")
	// ErrSplitMismatch is returned when an earnings split does not sum to total - discount.
	ErrSplitMismatch = errs.NewValueIsInvalidError("earnings split must sum to total - discount")
)

// ActorRole identifies who performed a lifecycle action. The role is recorded
// in the status history note stream and drives the cancellation earnings
// policy: agent-caused cancellations forfeit delivery earnings, vendor-caused
// cancellations before ready forfeit vendor earnings.
type ActorRole string

const (
	RoleCustomer ActorRole = "customer"
	RoleVendor   ActorRole = "vendor"
	RoleAgent    ActorRole = "agent"
	RoleAdmin    ActorRole = "admin"
	// RoleAgentTimeout is the implicit role used when an operations policy
	// cancels on behalf of a silent agent. Treated as agent-caused for earnings.
	RoleAgentTimeout ActorRole = "agent-timeout"
)

// Validate checks that the role is one of the known acting parties.
func (r ActorRole) Validate() error {
	switch r {
	case RoleCustomer, RoleVendor, RoleAgent, RoleAdmin, RoleAgentTimeout:
		return nil
	default:
		return errs.NewValueIsInvalidError("actorRole")
	}
}

// IsAgentCaused reports whether the role counts as agent-caused for the
// cancellation earnings policy.
func (r ActorRole) IsAgentCaused() bool {
	return r == RoleAgent || r == RoleAgentTimeout
}

// PaymentMethod is how the customer pays. Orthogonal to delivery status.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentWallet PaymentMethod = "wallet"
)

// Validate checks that the payment method is known.
func (m PaymentMethod) Validate() error {
	switch m {
	case PaymentCash, PaymentCard, PaymentWallet:
		return nil
	default:
		return errs.NewValueIsInvalidError("paymentMethod")
	}
}

// PaymentStatus is the capture state of the payment. Orthogonal to delivery status.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// StatusChange is a single entry of the append-only status history.
// Entries are strictly ordered by transition commit order and are never
// reordered or truncated.
type StatusChange struct {
	Status     Status
	OccurredAt time.Time
	ActorID    string
	Note       string
}

// Order represents a customer purchase moving through a fixed sequence of
// fulfillment states. It is the aggregate root for the lifecycle state
// machine: every status change goes through TransitionTo, every assignment
// through Assign/Unassign, and the earnings split is written exactly once.
//
// Order maintains these invariants:
//   - status changes follow the transition table in Status
//   - statusHistory is append-only and chronological
//   - total == subtotal + deliveryFee - discount on every mutation
//   - assignedAgentID is set through Assign only, while the order is ready
//   - picked_up requires an assignment held by the acting agent
//   - earningsSplit is written once, on a terminal status, and sums to
//     total - discount
//
// The version counter supports optimistic concurrency: repositories persist
// mutations conditionally on the version the aggregate was loaded with.
type Order struct {
	// id is the unique identifier for the order
	id kernel.UUID

	// vendorID identifies the vendor fulfilling the order
	vendorID kernel.UUID

	// pickupLocation is the vendor location the agent collects from
	pickupLocation kernel.Location

	// dropLocation is the customer delivery destination
	dropLocation kernel.Location

	// agentID is the assigned delivery agent (nil while unassigned)
	agentID *kernel.UUID

	// acceptedAt is when the current assignment was established (nil while unassigned)
	acceptedAt *time.Time

	// monetary amounts in cents; total is derived and invariant-checked
	subtotal    kernel.Money
	deliveryFee kernel.Money
	discount    kernel.Money
	total       kernel.Money

	paymentMethod PaymentMethod
	paymentStatus PaymentStatus

	// status is the current state in the order lifecycle
	status Status

	// history is the append-only status change log, oldest first
	history []StatusChange

	// earnings is the one-time split written on delivered/cancelled
	earnings *EarningsSplit

	// version is the optimistic concurrency counter as loaded from storage
	version int64

	// guard ensures the order was created via a constructor
	guard guard.ConstructorGuard
}

// NewOrder creates a new Order in pending status with an initial history
// entry. The monetary invariant total = subtotal + deliveryFee - discount is
// established here; a discount exceeding subtotal + deliveryFee is rejected
// because the total may not go negative.
func NewOrder(
	id kernel.UUID,
	vendorID kernel.UUID,
	pickupLocation kernel.Location,
	dropLocation kernel.Location,
	subtotal kernel.Money,
	deliveryFee kernel.Money,
	discount kernel.Money,
	paymentMethod PaymentMethod,
	placedAt time.Time,
) (*Order, error) {
	o := &Order{
		status:        Pending,
		paymentStatus: PaymentPending,
		version:       1,
		guard:         guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setVendorID(vendorID),
		o.setPickupLocation(pickupLocation),
		o.setDropLocation(dropLocation),
		o.setPaymentMethod(paymentMethod),
	); err != nil {
		return nil, err
	}

	total, err := subtotal.Add(deliveryFee).Sub(discount)
	if err != nil {
		return nil, ErrTotalMismatch
	}

	o.subtotal = subtotal
	o.deliveryFee = deliveryFee
	o.discount = discount
	o.total = total
	o.history = []StatusChange{{Status: Pending, OccurredAt: placedAt, Note: "order placed"}}

	return o, nil
}

// RestoreOrder reconstructs an Order aggregate from persistent storage.
// Unlike NewOrder it accepts the full persisted state, including the status
// history, version counter, assignment and earnings split, and re-validates
// the monetary invariant.
func RestoreOrder(
	id kernel.UUID,
	vendorID kernel.UUID,
	pickupLocation kernel.Location,
	dropLocation kernel.Location,
	subtotal kernel.Money,
	deliveryFee kernel.Money,
	discount kernel.Money,
	total kernel.Money,
	paymentMethod PaymentMethod,
	paymentStatus PaymentStatus,
	status Status,
	agentID *kernel.UUID,
	acceptedAt *time.Time,
	version int64,
	history []StatusChange,
	earnings *EarningsSplit,
) (*Order, error) {
	o := &Order{
		paymentStatus: paymentStatus,
		guard:         guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setVendorID(vendorID),
		o.setPickupLocation(pickupLocation),
		o.setDropLocation(dropLocation),
		o.setPaymentMethod(paymentMethod),
		status.Validate(),
	); err != nil {
		return nil, err
	}

	if version < 1 {
		return nil, errs.NewVersionIsInvalidError("order version",
			errors.New("version must be at least 1"))
	}

	if subtotal.Add(deliveryFee).Cents()-discount.Cents() != total.Cents() {
		return nil, ErrTotalMismatch
	}

	if agentID != nil {
		if err := agentID.Validate(); err != nil {
			return nil, err
		}
		copied := *agentID
		o.agentID = &copied
	}
	if acceptedAt != nil {
		copied := *acceptedAt
		o.acceptedAt = &copied
	}
	if earnings != nil {
		if err := earnings.Validate(); err != nil {
			return nil, err
		}
		copied := *earnings
		o.earnings = &copied
	}

	o.subtotal = subtotal
	o.deliveryFee = deliveryFee
	o.discount = discount
	o.total = total
	o.status = status
	o.version = version
	o.history = make([]StatusChange, len(history))
	copy(o.history, history)

	return o, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || o.guard.Validate(ErrOrderIsNotConstructed) != nil {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// VendorID returns the fulfilling vendor's identifier.
func (o *Order) VendorID() kernel.UUID {
	return o.vendorID
}

// PickupLocation returns the vendor location the agent collects from.
func (o *Order) PickupLocation() kernel.Location {
	return o.pickupLocation
}

// DropLocation returns the customer delivery destination.
func (o *Order) DropLocation() kernel.Location {
	return o.dropLocation
}

// AgentID returns the assigned delivery agent's ID, or nil while unassigned.
func (o *Order) AgentID() *kernel.UUID {
	return o.agentID
}

// AcceptedAt returns when the current assignment was established, or nil.
func (o *Order) AcceptedAt() *time.Time {
	return o.acceptedAt
}

// Subtotal returns the order item subtotal.
func (o *Order) Subtotal() kernel.Money {
	return o.subtotal
}

// DeliveryFee returns the delivery fee charged to the customer.
func (o *Order) DeliveryFee() kernel.Money {
	return o.deliveryFee
}

// Discount returns the discount applied to the order.
func (o *Order) Discount() kernel.Money {
	return o.discount
}

// Total returns subtotal + deliveryFee - discount.
func (o *Order) Total() kernel.Money {
	return o.total
}

// PaymentMethod returns how the customer pays.
func (o *Order) PaymentMethod() PaymentMethod {
	return o.paymentMethod
}

// PaymentStatus returns the capture state of the payment.
func (o *Order) PaymentStatus() PaymentStatus {
	return o.paymentStatus
}

// Status returns the current lifecycle status.
func (o *Order) Status() Status {
	return o.status
}

// Version returns the optimistic concurrency counter the aggregate was loaded
// with. Repositories persist mutations conditionally on this value.
func (o *Order) Version() int64 {
	return o.version
}

// History returns a copy of the append-only status change log, oldest first.
func (o *Order) History() []StatusChange {
	out := make([]StatusChange, len(o.history))
	copy(out, o.history)
	return out
}

// EarningsSplit returns the recorded split, or nil if not yet computed.
func (o *Order) EarningsSplit() *EarningsSplit {
	if o.earnings == nil {
		return nil
	}
	copied := *o.earnings
	return &copied
}

// DistributableTotal returns total - discount, the amount divided among
// vendor, delivery agent and platform.
func (o *Order) DistributableTotal() (kernel.Money, error) {
	return o.total.Sub(o.discount)
}

// ReadyAt returns the timestamp of the most recent transition into ready,
// or nil if the order never reached ready. Used as the dispatch pool
// posting time.
func (o *Order) ReadyAt() *time.Time {
	for i := len(o.history) - 1; i >= 0; i-- {
		if o.history[i].Status == Ready {
			at := o.history[i].OccurredAt
			return &at
		}
	}
	return nil
}

// WasPickedUp reports whether the order ever reached picked_up. Drives the
// in-transit branch of the cancellation earnings policy.
func (o *Order) WasPickedUp() bool {
	for _, change := range o.history {
		if change.Status == PickedUp {
			return true
		}
	}
	return false
}

// TransitionTo applies a validated status transition and appends a history
// entry with the server-assigned timestamp.
//
// Failure modes:
//   - InvalidTransitionError when target is not in the allowed set for the
//     current status; the message lists the valid next states
//   - ErrPreconditionFailed when advancing to picked_up without an assignment,
//     or when the acting party is not the assigned agent
//
// The transition mutates only the in-memory aggregate; persistence and the
// optimistic version check happen in the repository.
func (o *Order) TransitionTo(target Status, actorID string, note string, at time.Time) error {
	if err := target.Validate(); err != nil {
		return err
	}

	if actorID == "" {
		return ErrActorIsRequired
	}

	if !o.status.CanTransitionTo(target) {
		return errs.NewInvalidTransitionError(
			o.status.String(), target.String(), o.status.allowedTargetNames())
	}

	if target == PickedUp {
		if o.agentID == nil {
			return errs.NewPreconditionFailedError("order has no assigned agent")
		}
		if o.agentID.String() != actorID {
			return errs.NewPreconditionFailedError("only the assigned agent can pick up the order")
		}
	}

	o.history = append(o.history, StatusChange{
		Status:     target,
		OccurredAt: at,
		ActorID:    actorID,
		Note:       note,
	})
	o.status = target

	return nil
}

// Assign binds a delivery agent to the order while it is ready and
// unassigned. Assignment does not advance the status; picking up is a
// separate, guarded transition.
func (o *Order) Assign(agentID kernel.UUID, at time.Time) error {
	if err := agentID.Validate(); err != nil {
		return err
	}

	if o.agentID != nil {
		return errs.ErrAlreadyAssigned
	}

	if o.status != Ready {
		return errs.NewPreconditionFailedError("order is not ready for assignment")
	}

	o.agentID = &agentID
	o.acceptedAt = &at
	return nil
}

// Unassign releases the assignment held by agentID while the order is still
// ready, returning it to the dispatch pool. Not available once picked up.
func (o *Order) Unassign(agentID kernel.UUID) error {
	if o.status != Ready {
		return errs.NewPreconditionFailedError("order can only be released while ready")
	}

	if o.agentID == nil || !o.agentID.IsEqual(agentID) {
		return errs.NewPreconditionFailedError("order is not assigned to this agent")
	}

	o.agentID = nil
	o.acceptedAt = nil
	return nil
}

// SetEarningsSplit records the one-time earnings split. The order must be in
// a terminal status, no split may be recorded yet, and the split must sum to
// total - discount.
func (o *Order) SetEarningsSplit(split EarningsSplit) error {
	if err := split.Validate(); err != nil {
		return err
	}

	if !o.status.IsTerminal() {
		return errs.NewPreconditionFailedError("earnings split requires a terminal status")
	}

	if o.earnings != nil {
		return errs.NewPreconditionFailedError("earnings split is already recorded")
	}

	distributable, err := o.DistributableTotal()
	if err != nil {
		return err
	}
	if split.Sum().Cents() != distributable.Cents() {
		return ErrSplitMismatch
	}

	o.earnings = &split
	return nil
}

// MarkPaid records payment capture. Orthogonal to delivery status.
func (o *Order) MarkPaid() {
	o.paymentStatus = PaymentPaid
}

// MarkRefunded records a refund. Orthogonal to delivery status.
func (o *Order) MarkRefunded() {
	o.paymentStatus = PaymentRefunded
}

// setID validates and sets the order's unique identifier.
func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

// setVendorID validates and sets the vendor identifier.
func (o *Order) setVendorID(vendorID kernel.UUID) error {
	if err := vendorID.Validate(); err != nil {
		return err
	}
	o.vendorID = vendorID
	return nil
}

// setPickupLocation validates and sets the pickup location.
func (o *Order) setPickupLocation(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}
	o.pickupLocation = location
	return nil
}

// setDropLocation validates and sets the delivery destination.
func (o *Order) setDropLocation(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}
	o.dropLocation = location
	return nil
}

// setPaymentMethod validates and sets the payment method.
func (o *Order) setPaymentMethod(method PaymentMethod) error {
	if err := method.Validate(); err != nil {
		return err
	}
	o.paymentMethod = method
	return nil
}
