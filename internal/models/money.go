package models

import (
	"bytes"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"tradepro/internal/apperrors"
)

// MinorUnitsPerUnit is the number of minor units (cents, paise) in one currency unit.
const MinorUnitsPerUnit = 100

// MaxMoney is the largest representable amount.
const MaxMoney Money = math.MaxInt64

var (
	minorScale = decimal.NewFromInt(MinorUnitsPerUnit)
	maxMinor   = decimal.NewFromInt(math.MaxInt64)
)

// Money is an amount of currency in integer minor units.
type Money int64

// NewMoneyFromDecimal converts a currency amount like 12.34 into minor units.
// Amounts with more precision than one minor unit are rejected rather than rounded.
func NewMoneyFromDecimal(d decimal.Decimal) (Money, error) {
	scaled := d.Mul(minorScale)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has more than 2 decimal places", d.String())
	}
	if scaled.Abs().GreaterThan(maxMinor) {
		return 0, fmt.Errorf("%w: %s is out of range", apperrors.ErrInvalidAmount, d.String())
	}
	return Money(scaled.IntPart()), nil
}

// AddChecked returns m+o, or false when the sum does not fit in Money.
func (m Money) AddChecked(o Money) (Money, bool) {
	if (o > 0 && m > MaxMoney-o) || (o < 0 && m < math.MinInt64-o) {
		return 0, false
	}
	return m + o, true
}

// ParseMoney parses a decimal string such as "1000.50".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return NewMoneyFromDecimal(d)
}

// MustParseMoney is ParseMoney for constants and tests.
func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Decimal returns the amount in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Times multiplies a per-share price by a share count.
func (m Money) Times(quantity int64) Money {
	return m * Money(quantity)
}

// MarshalJSON writes the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*m = 0
		return nil
	}
	v, err := ParseMoney(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
