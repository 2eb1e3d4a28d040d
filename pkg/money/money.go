// Package money parses spreadsheet price cells into exact decimals and renders
// them as ISO-4217 currency amounts.
package money

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// GBP is the default ISO-4217 currency code.
const GBP = "GBP"

// ParseAmount parses a price cell. Surrounding whitespace and thousands
// separators are removed before parsing; ok is false for anything that is not
// a plain decimal number.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParsePositive is ParseAmount restricted to amounts strictly above zero.
func ParsePositive(raw string) (decimal.Decimal, bool) {
	d, ok := ParseAmount(raw)
	if !ok || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

// Money is a decimal amount bound to a currency.
type Money struct {
	m *money.Money
}

// NewFromDecimal creates Money from a decimal.Decimal value, rounding to the
// currency's minor unit. Unknown currency codes fall back to GBP.
func NewFromDecimal(amount decimal.Decimal, currencyCode string) *Money {
	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		currency = money.GetCurrency(GBP)
	}

	multiplier := decimal.New(1, int32(currency.Fraction))
	minor := amount.Mul(multiplier).Round(0).IntPart()

	return &Money{m: money.New(minor, currency.Code)}
}

// Currency returns the ISO-4217 currency code
func (m *Money) Currency() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Currency().Code
}

// Display returns a formatted string for display (e.g., "£1,234.56")
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Display()
}

// Range tracks the lowest and highest amount seen.
type Range struct {
	Min, Max decimal.Decimal
	seen     bool
}

// Observe widens the range to include d.
func (r *Range) Observe(d decimal.Decimal) {
	if !r.seen {
		r.Min, r.Max, r.seen = d, d, true
		return
	}
	if d.LessThan(r.Min) {
		r.Min = d
	}
	if d.GreaterThan(r.Max) {
		r.Max = d
	}
}

// Empty reports whether nothing has been observed.
func (r *Range) Empty() bool {
	return !r.seen
}
