// Package money implements fixed-point decimal arithmetic for monetary values.
// All operations take and return canonical decimal strings at a declared scale;
// binary floating point never enters a computation path.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	// ScaleAmount is the scale for currency amounts and rates.
	ScaleAmount int32 = 2
	// ScaleQuantity is the scale for quantities (hours, days, units).
	ScaleQuantity int32 = 3
)

// ErrInvalidDecimal indicates a string that cannot be parsed as a decimal.
var ErrInvalidDecimal = errors.New("invalid decimal value")

// Decimal formats a raw numeric input to a fixed-scale decimal string,
// rounding half away from zero. This is the only conversion boundary where
// floating point is accepted.
func Decimal(raw float64, scale int32) string {
	return decimal.NewFromFloat(raw).StringFixed(scale)
}

// Normalize parses a decimal string and reformats it at the given scale.
// Normalizing an already canonical string is a no-op.
func Normalize(s string, scale int32) (string, error) {
	d, err := parse(s)
	if err != nil {
		return "", err
	}
	return d.StringFixed(scale), nil
}

// Zero returns the zero value at the given scale, e.g. "0.00".
func Zero(scale int32) string {
	return decimal.Zero.StringFixed(scale)
}

// Add returns a+b at the given scale.
func Add(a, b string, scale int32) (string, error) {
	da, db, err := parsePair(a, b)
	if err != nil {
		return "", err
	}
	return da.Add(db).StringFixed(scale), nil
}

// Sub returns a-b at the given scale.
func Sub(a, b string, scale int32) (string, error) {
	da, db, err := parsePair(a, b)
	if err != nil {
		return "", err
	}
	return da.Sub(db).StringFixed(scale), nil
}

// Mul returns a*b rounded to the given scale. The multiplication itself is
// exact; rounding happens only at the final formatting step.
func Mul(a, b string, scale int32) (string, error) {
	da, db, err := parsePair(a, b)
	if err != nil {
		return "", err
	}
	return da.Mul(db).StringFixed(scale), nil
}

// Percentage returns amount*rate/100 rounded to the given scale. A zero
// amount or zero rate short-circuits to the zero value at scale, avoiding
// "-0" and scale artifacts. The division by 100 is a decimal shift, so no
// precision is lost before the final rounding.
func Percentage(amount, rate string, scale int32) (string, error) {
	da, db, err := parsePair(amount, rate)
	if err != nil {
		return "", err
	}
	if da.IsZero() || db.IsZero() {
		return Zero(scale), nil
	}
	return da.Mul(db).Shift(-2).StringFixed(scale), nil
}

// Cmp compares two decimal strings: -1 if a<b, 0 if equal, +1 if a>b.
func Cmp(a, b string) (int, error) {
	da, db, err := parsePair(a, b)
	if err != nil {
		return 0, err
	}
	return da.Cmp(db), nil
}

// IsPositive reports whether the decimal string is strictly greater than zero.
func IsPositive(s string) (bool, error) {
	d, err := parse(s)
	if err != nil {
		return false, err
	}
	return d.IsPositive(), nil
}

// IsNegative reports whether the decimal string is strictly less than zero.
func IsNegative(s string) (bool, error) {
	d, err := parse(s)
	if err != nil {
		return false, err
	}
	return d.IsNegative(), nil
}

func parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidDecimal, s)
	}
	return d, nil
}

func parsePair(a, b string) (decimal.Decimal, decimal.Decimal, error) {
	da, err := parse(a)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, err
	}
	db, err := parse(b)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, err
	}
	return da, db, nil
}
