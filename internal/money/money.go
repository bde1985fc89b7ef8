package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places every amount is rounded to on entry.
const Scale = 4

// ErrOverflow is returned when an operation would exceed the representable range.
var ErrOverflow = errors.New("decimal overflow")

// ErrNegativeResult is returned when a subtraction would produce a negative
// amount. Balances never go below zero, so every subtraction in the engine
// runs under this rule.
var ErrNegativeResult = errors.New("negative result")

// ErrInvalidAmount is returned when a raw amount cannot be parsed.
var ErrInvalidAmount = errors.New("invalid amount")

// maxValue caps the representable range at 10^24. shopspring/decimal is
// arbitrary precision, so without a cap a malicious input could grow balances
// without bound; the cap makes Add fail the way a fixed-width decimal would.
var maxValue = decimal.New(1, 24)

// CheckedDecimal is a fixed-scale, non-wrapping decimal amount. All arithmetic
// is checked: an operation returns either a new value or an error, never a
// silently saturated or negative result.
type CheckedDecimal struct {
	value decimal.Decimal
}

// Zero is the zero amount.
var Zero = CheckedDecimal{}

// Parse converts a raw string into a CheckedDecimal, rounding to Scale.
func Parse(raw string) (CheckedDecimal, error) {
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return Zero, ErrInvalidAmount
	}
	v = v.Round(Scale)
	if v.Abs().Cmp(maxValue) > 0 {
		return Zero, ErrOverflow
	}
	return CheckedDecimal{value: v}, nil
}

// FromDecimal wraps an existing decimal, rounding to Scale.
func FromDecimal(v decimal.Decimal) CheckedDecimal {
	return CheckedDecimal{value: v.Round(Scale)}
}

// Add returns c + other, or ErrOverflow if the sum exceeds the cap.
func (c CheckedDecimal) Add(other CheckedDecimal) (CheckedDecimal, error) {
	sum := c.value.Add(other.value)
	if sum.Cmp(maxValue) > 0 {
		return Zero, ErrOverflow
	}
	return CheckedDecimal{value: sum}, nil
}

// Sub returns c - other, or ErrNegativeResult if the difference is negative.
func (c CheckedDecimal) Sub(other CheckedDecimal) (CheckedDecimal, error) {
	diff := c.value.Sub(other.value)
	if diff.IsNegative() {
		return Zero, ErrNegativeResult
	}
	return CheckedDecimal{value: diff}, nil
}

// Cmp compares c against other: -1 if less, 0 if equal, +1 if greater.
func (c CheckedDecimal) Cmp(other CheckedDecimal) int {
	return c.value.Cmp(other.value)
}

// LessThan reports whether c < other.
func (c CheckedDecimal) LessThan(other CheckedDecimal) bool {
	return c.value.Cmp(other.value) < 0
}

// IsNegative reports whether the amount is below zero.
func (c CheckedDecimal) IsNegative() bool {
	return c.value.IsNegative()
}

// IsPositive reports whether the amount is strictly above zero.
func (c CheckedDecimal) IsPositive() bool {
	return c.value.IsPositive()
}

// Decimal returns the underlying decimal value.
func (c CheckedDecimal) Decimal() decimal.Decimal {
	return c.value
}

func (c CheckedDecimal) String() string {
	return c.value.String()
}
