// Package core provides money parsing and handling utilities.
//
// Amounts are stored as JSON numbers, but every arithmetic step goes through
// decimal.Decimal so deposits and clamping never drift by a cent.
package core

import (
	"math"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when no ISO code is configured.
const DefaultCurrency = money.USD

// MaxAmount is the largest amount accepted from input. Its minor units fit
// an int64 in every currency go-money knows, and its cents are exact as a
// float64.
var MaxAmount = decimal.New(1, 12)

var maxMinorUnits = decimal.NewFromInt(math.MaxInt64)

// ParseAmount parses a user-entered amount. Both dot (12.34) and comma
// (12,34) decimal separators are accepted; negative values and values above
// MaxAmount are rejected.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-1")    -> 0, ErrInvalidAmount
//	ParseAmount("1e400") -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsNegative() || d.GreaterThan(MaxAmount) {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// Clamp bounds v to [0, max].
func Clamp(v, max decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	if max.IsNegative() {
		max = decimal.Zero
	}
	return decimal.Min(v, max)
}

// FormatAmount renders v with exactly two decimals and no currency symbol.
func FormatAmount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

// FormatCurrency renders v in the given ISO currency, e.g. "$1,000.00".
// Unknown codes, and amounts whose minor units overflow an int64, fall back
// to a bare two-decimal amount.
func FormatCurrency(v float64, code string) string {
	if code == "" {
		code = DefaultCurrency
	}
	cur := money.GetCurrency(code)
	if cur == nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return FormatAmount(v)
	}
	amount := decimal.NewFromFloat(v).Round(int32(cur.Fraction))
	minor := amount.Mul(decimal.New(1, int32(cur.Fraction)))
	if minor.Abs().GreaterThan(maxMinorUnits) {
		return FormatAmount(v)
	}
	return money.New(minor.IntPart(), code).Display()
}
