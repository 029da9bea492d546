package order

import (
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// ErrEarningsSplitIsNotConstructed is returned when using an improperly
// initialized EarningsSplit.
var ErrEarningsSplitIsNotConstructed = errs.NewValueIsRequiredError(
	"earnings split must be created via NewEarningsSplit constructor")

// EarningsSplit is the immutable division of an order's distributable total
// among vendor, delivery agent and platform. It is computed exactly once, on
// the transition into delivered or cancelled, and never modified afterwards.
type EarningsSplit struct {
	vendorEarnings   kernel.Money
	deliveryEarnings kernel.Money
	platformEarnings kernel.Money
	guard            guard.ConstructorGuard
}

// NewEarningsSplit creates an EarningsSplit from the three shares.
// Money values are non-negative by construction, so no further range checks
// are needed here; consistency with the order total is enforced by
// Order.SetEarningsSplit.
func NewEarningsSplit(vendorEarnings, deliveryEarnings, platformEarnings kernel.Money) EarningsSplit {
	return EarningsSplit{
		vendorEarnings:   vendorEarnings,
		deliveryEarnings: deliveryEarnings,
		platformEarnings: platformEarnings,
		guard:            guard.NewConstructorGuard(),
	}
}

// Validate checks that the split was created through NewEarningsSplit.
func (s EarningsSplit) Validate() error {
	return s.guard.Validate(ErrEarningsSplitIsNotConstructed)
}

// VendorEarnings returns the vendor's share.
func (s EarningsSplit) VendorEarnings() kernel.Money {
	return s.vendorEarnings
}

// DeliveryEarnings returns the delivery agent's share.
func (s EarningsSplit) DeliveryEarnings() kernel.Money {
	return s.deliveryEarnings
}

// PlatformEarnings returns the platform's share.
func (s EarningsSplit) PlatformEarnings() kernel.Money {
	return s.platformEarnings
}

// Sum returns vendor + delivery + platform earnings. For a valid split this
// equals the order's total minus discount.
func (s EarningsSplit) Sum() kernel.Money {
	return s.vendorEarnings.Add(s.deliveryEarnings).Add(s.platformEarnings)
}
