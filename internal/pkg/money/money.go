package money

import (
	"errors"
	"fmt"
	"strings"
)

var ErrCurrencyMismatch = errors.New("currency mismatch")

// Amount is a monetary value in integer minor units (kobo, cents).
// All arithmetic stays in minor units; conversion to display units is a
// client concern.
type Amount struct {
	Value    int64  `json:"value"`
	Currency string `json:"currency"`
}

// New creates an amount in minor units
func New(value int64, currency string) Amount {
	return Amount{Value: value, Currency: NormalizeCurrency(currency)}
}

// Zero returns a zero amount in the given currency
func Zero(currency string) Amount {
	return New(0, currency)
}

// NormalizeCurrency upper-cases and trims a currency code
func NormalizeCurrency(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}

// SameCurrency reports whether both amounts carry the same currency code
func (a Amount) SameCurrency(b Amount) bool {
	return a.Currency == b.Currency
}

// Add returns a + b, failing on mixed currencies
func (a Amount) Add(b Amount) (Amount, error) {
	if !a.SameCurrency(b) {
		return Amount{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, a.Currency, b.Currency)
	}
	return Amount{Value: a.Value + b.Value, Currency: a.Currency}, nil
}

// Sub returns a - b, failing on mixed currencies
func (a Amount) Sub(b Amount) (Amount, error) {
	if !a.SameCurrency(b) {
		return Amount{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, a.Currency, b.Currency)
	}
	return Amount{Value: a.Value - b.Value, Currency: a.Currency}, nil
}

// MulCount returns a × n for a non-negative integer count (nights, shares)
func (a Amount) MulCount(n int64) Amount {
	return Amount{Value: a.Value * n, Currency: a.Currency}
}

// PercentBps returns the given fraction of a in basis points,
// rounded half up. 100 bps = 1%.
func (a Amount) PercentBps(bps int64) Amount {
	v := a.Value * bps
	half := int64(5000)
	if v < 0 {
		half = -half
	}
	return Amount{Value: (v + half) / 10000, Currency: a.Currency}
}

// IsZero reports whether the value is zero
func (a Amount) IsZero() bool {
	return a.Value == 0
}

// IsNegative reports whether the value is below zero
func (a Amount) IsNegative() bool {
	return a.Value < 0
}

// Equal reports value and currency equality
func (a Amount) Equal(b Amount) bool {
	return a.Value == b.Value && a.SameCurrency(b)
}

// String formats the amount as "<minor-units> <currency>"
func (a Amount) String() string {
	return fmt.Sprintf("%d %s", a.Value, a.Currency)
}
