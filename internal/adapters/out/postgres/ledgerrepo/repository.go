package ledgerrepo

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint violation.
const uniqueViolation = "23505"

// GormEarningsLedger implements EarningsLedger using GORM.
type GormEarningsLedger struct {
	db *gorm.DB
}

// NewGormEarningsLedger creates a new GORM earnings ledger.
func NewGormEarningsLedger(db *gorm.DB) *GormEarningsLedger {
	return &GormEarningsLedger{db: db}
}

// Record appends the split for an order. A second record for the same order
// violates the primary key and fails with errs.ErrDuplicateEntry, enforcing
// the write-once invariant at the storage boundary.
func (l *GormEarningsLedger) Record(ctx context.Context, entry ports.LedgerEntry) error {
	if err := errors.Join(entry.OrderID.Validate(), entry.Split.Validate()); err != nil {
		return err
	}

	dto := fromDomain(entry)
	if err := l.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if isUniqueViolation(err) {
			return errs.ErrDuplicateEntry
		}
		return err
	}

	return nil
}

// Get retrieves the recorded entry for an order.
func (l *GormEarningsLedger) Get(ctx context.Context, orderID kernel.UUID) (ports.LedgerEntry, error) {
	if err := orderID.Validate(); err != nil {
		return ports.LedgerEntry{}, err
	}

	var dto LedgerEntryDTO
	if err := l.db.WithContext(ctx).First(&dto, "order_id = ?", orderID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.LedgerEntry{}, errs.NewObjectNotFoundError("ledger entry", orderID.String())
		}
		return ports.LedgerEntry{}, err
	}

	return toDomain(dto)
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation, either as the raw driver error or GORM's translated form.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return true
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
