// Package core holds the domain types shared across the application:
// currency amounts, accounts, feed items, savings goals and week intervals.
package core

import (
	"fmt"
	"strconv"
)

// Money is an exact amount in a single currency, held in minor units
// (pence for GBP). Arithmetic is only defined between amounts of the
// same currency; mixing currencies is a programming error and panics.
type Money struct {
	Currency   string
	MinorUnits int64
}

// Zero returns a zero amount in the given currency. It is the starting
// accumulator for summing feed amounts.
func Zero(currency string) Money {
	return Money{Currency: currency}
}

// Add returns m + other. Panics if the currencies differ.
func (m Money) Add(other Money) Money {
	m.assertSameCurrency(other)
	return Money{Currency: m.Currency, MinorUnits: m.MinorUnits + other.MinorUnits}
}

// Subtract returns m - other. Panics if the currencies differ.
func (m Money) Subtract(other Money) Money {
	m.assertSameCurrency(other)
	return Money{Currency: m.Currency, MinorUnits: m.MinorUnits - other.MinorUnits}
}

func (m Money) assertSameCurrency(other Money) {
	if m.Currency != other.Currency {
		panic(fmt.Sprintf("core: currency mismatch: %s vs %s", m.Currency, other.Currency))
	}
}

// RoundUpToNearestHundred returns the amount rounded up to the next
// multiple of 100 minor units. Exact multiples (and zero) are unchanged.
func (m Money) RoundUpToNearestHundred() Money {
	return Money{
		Currency:   m.Currency,
		MinorUnits: ((m.MinorUnits + 99) / 100) * 100,
	}
}

// IsZero reports whether the amount is zero minor units.
func (m Money) IsZero() bool {
	return m.MinorUnits == 0
}

// String formats the amount in major units, e.g. "1.58 GBP".
func (m Money) String() string {
	units := m.MinorUnits
	neg := units < 0
	if neg {
		units = -units
	}
	s := strconv.FormatInt(units/100, 10) + "." + fmt.Sprintf("%02d", units%100)
	if neg {
		s = "-" + s
	}
	if m.Currency == "" {
		return s
	}
	return s + " " + m.Currency
}
