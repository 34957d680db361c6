/*
Package generic provides the domain-agnostic building blocks of the payroll engine.

PURPOSE:
  This package contains the value types every calculator shares: money with a
  currency, calendar dates, date ranges, holiday sets and the error taxonomy.
  Nothing in here knows about tax brackets, NSSF or overtime; those live in
  the payroll package, which composes these types.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A decimal value tagged with its Currency (e.g., 8000000 KHR, 1500.50 USD)
  - Currency: ISO-style code that knows its smallest unit (KHR has none, USD has cents)
  - EmployeeID / PeriodID: Type-safe identifiers

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
  2. Explicit rounding: values are only rounded when a caller asks for it
  3. Type Safety: Strong typing for IDs prevents mixing employee/period IDs

USAGE:
  salary := generic.NewMoney(decimal.NewFromInt(8000000), generic.KHR)
  usd := generic.MustParseMoney("1500.50", generic.USD)
  khr := usd.Convert(decimal.NewFromInt(4100), generic.KHR).Round()

SEE ALSO:
  - time.go: Calendar dates and holiday sets
  - period.go: Inclusive date ranges
  - errors.go: Sentinel and structured errors
*/
package generic

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CURRENCY
// =============================================================================

type Currency string

const (
	KHR Currency = "KHR"
	USD Currency = "USD"
	THB Currency = "THB"
	VND Currency = "VND"
	JPY Currency = "JPY"
)

// zeroDecimalCurrencies have no minor unit in circulation.
var zeroDecimalCurrencies = map[Currency]bool{
	KHR: true,
	VND: true,
	JPY: true,
}

// Places returns the number of decimal places of the currency's smallest unit.
func (c Currency) Places() int32 {
	if zeroDecimalCurrencies[c] {
		return 0
	}
	return 2
}

// =============================================================================
// MONEY - Decimal value with currency
// =============================================================================

type Money struct {
	Value    decimal.Decimal
	Currency Currency
}

func NewMoney(value decimal.Decimal, currency Currency) Money {
	return Money{Value: value, Currency: currency}
}

func NewMoneyFromInt(value int64, currency Currency) Money {
	return Money{Value: decimal.NewFromInt(value), Currency: currency}
}

// ParseMoney parses a decimal string such as "1500.50".
func ParseMoney(s string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Money{Value: d, Currency: currency}, nil
}

// MustParseMoney is ParseMoney for literals in presets and tests.
func MustParseMoney(s string, currency Currency) Money {
	m, err := ParseMoney(s, currency)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Zero() Money                 { return Money{Value: decimal.Zero, Currency: m.Currency} }
func (m Money) Add(o Money) Money           { return Money{Value: m.Value.Add(o.Value), Currency: m.Currency} }
func (m Money) Sub(o Money) Money           { return Money{Value: m.Value.Sub(o.Value), Currency: m.Currency} }
func (m Money) Mul(s decimal.Decimal) Money { return Money{Value: m.Value.Mul(s), Currency: m.Currency} }
func (m Money) Div(s decimal.Decimal) Money { return Money{Value: m.Value.Div(s), Currency: m.Currency} }
func (m Money) IsNegative() bool            { return m.Value.IsNegative() }
func (m Money) IsZero() bool                { return m.Value.IsZero() }
func (m Money) IsPositive() bool            { return m.Value.IsPositive() }
func (m Money) GreaterThan(o Money) bool    { return m.Value.GreaterThan(o.Value) }
func (m Money) LessThan(o Money) bool       { return m.Value.LessThan(o.Value) }
func (m Money) Equal(o Money) bool          { return m.Currency == o.Currency && m.Value.Equal(o.Value) }

// Round rounds half away from zero to the currency's smallest unit.
func (m Money) Round() Money {
	return Money{Value: m.Value.Round(m.Currency.Places()), Currency: m.Currency}
}

// Convert multiplies by rate and re-tags the result. No rounding is applied.
func (m Money) Convert(rate decimal.Decimal, to Currency) Money {
	if m.Currency == to {
		return m
	}
	return Money{Value: m.Value.Mul(rate), Currency: to}
}

func (m Money) String() string {
	return m.Value.StringFixed(m.Currency.Places()) + " " + string(m.Currency)
}

// RoundTo rounds a bare decimal to the smallest unit of currency.
func RoundTo(d decimal.Decimal, currency Currency) decimal.Decimal {
	return d.Round(currency.Places())
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type PeriodID string
type AdjustmentID string
type CalculationID string
