package services

import (
	"errors"
	"math"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
)

// Domain errors for earnings computation.
var (
	// ErrFeeBandNotFound is returned when no configured fee band covers the
	// delivery distance.
	ErrFeeBandNotFound = errors.New("no fee band covers the delivery distance")
	// ErrFeeTableIsRequired is returned when constructing a calculator without
	// any fee bands.
	ErrFeeTableIsRequired = errs.NewValueIsRequiredError("delivery fee table")
)

// FeeBand is one row of the configured delivery fee table: orders whose
// pickup-to-drop distance falls in [MinKm, MaxKm) earn the agent
// BaseFee + PerKmFee * distance. A MaxKm of zero or below marks the band as
// open-ended.
type FeeBand struct {
	MinKm    float64
	MaxKm    float64
	BaseFee  kernel.Money
	PerKmFee kernel.Money
}

// covers reports whether the band applies to the given distance.
func (b FeeBand) covers(distanceKm float64) bool {
	if distanceKm < b.MinKm {
		return false
	}
	return b.MaxKm <= 0 || distanceKm < b.MaxKm
}

// EarningsCalculator is the domain service that divides an order's
// distributable total (total - discount) among vendor, delivery agent and
// platform at the moment the order reaches a terminal status.
//
// The division is deterministic:
//   - delivery earnings come from the fee table as a function of the
//     pickup-to-drop distance, capped at the distributable total
//   - platform earnings are total * commissionRate, rounded to the cent and
//     clamped so the remaining shares stay non-negative
//   - vendor earnings are the remainder, floored at zero; any shortfall is
//     absorbed by the platform share, never silently dropped
//
// Cancellation applies the policy on top of that: an agent-caused
// cancellation forfeits delivery earnings entirely, a cancellation after
// pickup by any other party pays the agent the full-leg distance fee, a
// cancellation before pickup pays the agent nothing, and a vendor-caused
// cancellation before the order was ever ready forfeits the vendor share.
type EarningsCalculator struct {
	feeTable []FeeBand
}

// NewEarningsCalculator creates a calculator over the configured fee table.
// At least one band is required.
func NewEarningsCalculator(feeTable []FeeBand) (EarningsCalculator, error) {
	if len(feeTable) == 0 {
		return EarningsCalculator{}, ErrFeeTableIsRequired
	}

	bands := make([]FeeBand, len(feeTable))
	copy(bands, feeTable)
	return EarningsCalculator{feeTable: bands}, nil
}

// DeliveryFeeForDistance resolves the agent fee for a pickup-to-drop distance
// from the fee table. The first covering band wins.
func (c EarningsCalculator) DeliveryFeeForDistance(distanceKm float64) (kernel.Money, error) {
	if distanceKm < 0 || math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) {
		return 0, errs.NewValueIsOutOfRangeError("distanceKm", distanceKm, 0.0, math.MaxFloat64)
	}

	for _, band := range c.feeTable {
		if band.covers(distanceKm) {
			return band.BaseFee.Add(band.PerKmFee.MulRate(distanceKm)), nil
		}
	}

	return 0, ErrFeeBandNotFound
}

// ComputeDelivered computes the split for an order entering delivered.
// commissionRate is the vendor's platform commission as a fraction of the
// order total.
func (c EarningsCalculator) ComputeDelivered(o *order.Order, commissionRate float64) (order.EarningsSplit, error) {
	if err := o.Validate(); err != nil {
		return order.EarningsSplit{}, err
	}

	deliveryEarnings, err := c.DeliveryFeeForDistance(
		o.PickupLocation().DistanceKmTo(o.DropLocation()))
	if err != nil {
		return order.EarningsSplit{}, err
	}

	return c.split(o, commissionRate, deliveryEarnings)
}

// ComputeCancelled computes the split for an order entering cancelled, given
// the role of the cancelling party.
func (c EarningsCalculator) ComputeCancelled(
	o *order.Order,
	commissionRate float64,
	cause order.ActorRole,
) (order.EarningsSplit, error) {
	if err := errors.Join(o.Validate(), cause.Validate()); err != nil {
		return order.EarningsSplit{}, err
	}

	var deliveryEarnings kernel.Money
	if o.WasPickedUp() && !cause.IsAgentCaused() {
		fee, err := c.DeliveryFeeForDistance(
			o.PickupLocation().DistanceKmTo(o.DropLocation()))
		if err != nil {
			return order.EarningsSplit{}, err
		}
		deliveryEarnings = fee
	}

	split, err := c.split(o, commissionRate, deliveryEarnings)
	if err != nil {
		return order.EarningsSplit{}, err
	}

	// A vendor cancelling before the order was ever ready forfeits the vendor
	// share; the remainder moves to the platform.
	if cause == order.RoleVendor && o.ReadyAt() == nil {
		split = order.NewEarningsSplit(
			0,
			split.DeliveryEarnings(),
			split.PlatformEarnings().Add(split.VendorEarnings()),
		)
	}

	return split, nil
}

// split divides the distributable total given an already-resolved delivery
// share. Platform takes total * rate, clamped so vendor never goes negative.
func (c EarningsCalculator) split(
	o *order.Order,
	commissionRate float64,
	deliveryEarnings kernel.Money,
) (order.EarningsSplit, error) {
	if commissionRate < 0 || commissionRate > 1 {
		return order.EarningsSplit{}, errs.NewValueIsOutOfRangeError(
			"commissionRate", commissionRate, 0.0, 1.0)
	}

	distributable, err := o.DistributableTotal()
	if err != nil {
		return order.EarningsSplit{}, err
	}

	if deliveryEarnings > distributable {
		deliveryEarnings = distributable
	}

	remainder, err := distributable.Sub(deliveryEarnings)
	if err != nil {
		return order.EarningsSplit{}, err
	}

	platformEarnings := o.Total().MulRate(commissionRate)
	if platformEarnings > remainder {
		platformEarnings = remainder
	}

	vendorEarnings, err := remainder.Sub(platformEarnings)
	if err != nil {
		return order.EarningsSplit{}, err
	}

	return order.NewEarningsSplit(vendorEarnings, deliveryEarnings, platformEarnings), nil
}
