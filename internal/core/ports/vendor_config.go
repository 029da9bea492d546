package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
)

// VendorConfig provides the read-only commercial configuration the earnings
// computation depends on. The provider is assumed eventually consistent;
// splits use whatever values are current at transition time.
type VendorConfig interface {
	// GetCommissionRate returns the platform commission for a vendor as a
	// fraction of the order total.
	GetCommissionRate(ctx context.Context, vendorID kernel.UUID) (float64, error)

	// GetDeliveryFeeTable returns the distance-banded delivery fee table.
	GetDeliveryFeeTable(ctx context.Context) ([]services.FeeBand, error)
}
