package kernel

import (
	"fmt"
	"math"

	"dispatch/internal/pkg/errs"
)

// Money is a non-negative monetary amount in the smallest currency unit (cents).
// Integer cents avoid floating-point drift in fee splits; the zero value is a
// valid zero amount, so Money needs no constructor guard.
type Money int64

// NewMoney creates a Money value from cents. Negative amounts are rejected.
func NewMoney(cents int64) (Money, error) {
	if cents < 0 {
		return 0, errs.NewValueIsOutOfRangeError("money", cents, 0, int64(math.MaxInt64))
	}
	return Money(cents), nil
}

// Cents returns the amount in the smallest currency unit.
func (m Money) Cents() int64 {
	return int64(m)
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return m + other
}

// Sub returns m minus other. Results below zero are rejected because no
// monetary field in the order model may go negative.
func (m Money) Sub(other Money) (Money, error) {
	if other > m {
		return 0, errs.NewValueIsOutOfRangeError("money", int64(m-other), 0, int64(math.MaxInt64))
	}
	return m - other, nil
}

// MulRate multiplies the amount by a rate, rounding half away from zero to the
// nearest cent. Used for commission computation.
func (m Money) MulRate(rate float64) Money {
	return Money(math.Round(float64(m) * rate))
}

// String renders the amount as a decimal with two fraction digits, e.g. "12.34".
func (m Money) String() string {
	return fmt.Sprintf("%d.%02d", m/100, m%100)
}
