// Package pricing formats, parses and computes store currency amounts.
package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is the prefix printed before every amount (Honduran lempira).
const Currency = "L."

// Decimals is the number of fraction digits shown and kept after rounding.
const Decimals = 2

// SurchargeRate is the fixed ISV applied to an invoice subtotal.
var SurchargeRate = decimal.RequireFromString("0.15")

var ErrInvalidAmount = errors.New("invalid currency amount")

// Format renders d as "L.1500.00".
func Format(d decimal.Decimal) string {
	return Currency + d.StringFixed(Decimals)
}

// Parse accepts "L.1500.00", "L.1,500.00", " 1500 " and similar renderings.
// Negative amounts are rejected.
func Parse(s string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimPrefix(raw, Currency)
	raw = strings.ReplaceAll(raw, ",", "")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, s)
	}
	return d, nil
}

// LineTotal is unit price times quantity.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// Surcharge is the ISV owed on subtotal, rounded to cents.
func Surcharge(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(SurchargeRate).Round(Decimals)
}

// WithSurcharge is subtotal plus its surcharge.
func WithSurcharge(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Add(Surcharge(subtotal))
}
