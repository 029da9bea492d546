// Package ledgerrepo persists the earnings ledger with GORM. The ledger is
// append-once: the primary key on the order ID turns a second write for the
// same order into a unique violation, which the repository surfaces as a
// duplicate-entry error.
package ledgerrepo

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"

	"github.com/google/uuid"
)

// LedgerEntryDTO is the database row for one recorded earnings split.
// Amounts are integer cents.
type LedgerEntryDTO struct {
	OrderID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	VendorEarnings   int64
	DeliveryEarnings int64
	PlatformEarnings int64
	RecordedAt       time.Time
}

// TableName overrides GORM's default naming convention to use "earnings_ledger".
func (LedgerEntryDTO) TableName() string {
	return "earnings_ledger"
}

// fromDomain converts a ledger entry to its database representation.
func fromDomain(entry ports.LedgerEntry) LedgerEntryDTO {
	return LedgerEntryDTO{
		OrderID:          entry.OrderID.Bytes(),
		VendorEarnings:   entry.Split.VendorEarnings().Cents(),
		DeliveryEarnings: entry.Split.DeliveryEarnings().Cents(),
		PlatformEarnings: entry.Split.PlatformEarnings().Cents(),
		RecordedAt:       entry.RecordedAt,
	}
}

// toDomain converts a database row back to a ledger entry.
func toDomain(dto LedgerEntryDTO) (ports.LedgerEntry, error) {
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return ports.LedgerEntry{}, err
	}

	vendorShare, err := kernel.NewMoney(dto.VendorEarnings)
	if err != nil {
		return ports.LedgerEntry{}, err
	}
	deliveryShare, err := kernel.NewMoney(dto.DeliveryEarnings)
	if err != nil {
		return ports.LedgerEntry{}, err
	}
	platformShare, err := kernel.NewMoney(dto.PlatformEarnings)
	if err != nil {
		return ports.LedgerEntry{}, err
	}

	return ports.LedgerEntry{
		OrderID:    orderID,
		Split:      order.NewEarningsSplit(vendorShare, deliveryShare, platformShare),
		RecordedAt: dto.RecordedAt,
	}, nil
}
