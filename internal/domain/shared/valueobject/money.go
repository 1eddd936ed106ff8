package valueobject

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

// EUR is the only currency the storefront sells in
const EUR Currency = "EUR"

// ErrCurrencyMismatch is returned when combining amounts in different currencies
var ErrCurrencyMismatch = errors.New("currency mismatch")

// Money is an immutable monetary amount. All operations return new values.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates Money in the given currency
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{amount: amount, currency: currency}, nil
}

// NewEUR creates Money in euros
func NewEUR(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: EUR}
}

// NewEURFromString parses a euro amount such as "12.50"
func NewEURFromString(amount string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, err
	}
	return NewEUR(d), nil
}

// ZeroEUR returns zero euros
func ZeroEUR() Money {
	return NewEUR(decimal.Zero)
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() Currency      { return m.currency }
func (m Money) IsZero() bool            { return m.amount.IsZero() }
func (m Money) IsNegative() bool        { return m.amount.IsNegative() }

// Add returns the sum of both amounts
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// MustAdd is Add for callers that already guarantee a shared currency
func (m Money) MustAdd(other Money) Money {
	sum, err := m.Add(other)
	if err != nil {
		panic(err)
	}
	return sum
}

// MultiplyByInt multiplies the amount by an integer factor (e.g. a quantity)
func (m Money) MultiplyByInt(factor int64) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(factor)), currency: m.currency}
}

// Multiply multiplies the amount by a decimal factor (e.g. a tax rate)
func (m Money) Multiply(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor), currency: m.currency}
}

// Round rounds half away from zero to the given decimal places
func (m Money) Round(places int32) Money {
	return Money{amount: m.amount.Round(places), currency: m.currency}
}

// Equals compares amount and currency
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// String returns "12.50 EUR"
func (m Money) String() string {
	return m.amount.StringFixed(2) + " " + string(m.currency)
}

// Format renders the amount the way Spanish receipts print it: "1234,50 €"
func (m Money) Format() string {
	s := strings.Replace(m.amount.StringFixed(2), ".", ",", 1)
	if m.currency == EUR {
		return s + " €"
	}
	return s + " " + string(m.currency)
}
