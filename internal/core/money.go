// Package core provides the ledger domain types and their validation.
//
// This file contains the fixed-point money type. Amounts are kept as
// int64 cents end to end and formatted to two fractional digits only at
// the boundary.
package core

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrAmountTooLarge = errors.New("amount exceeds 9999999999.99")
	ErrAmountOverflow = errors.New("amount arithmetic overflow")
)

// MaxAmount is the largest salary or expense amount, the range of a
// numeric(12,2) column.
var MaxAmount = Money{Cents: 999_999_999_999}

// Money is an exact amount expressed in cents.
type Money struct {
	Cents int64
}

// ParseAmount converts a non-negative decimal string to Money.
//
// The accepted shape is digits optionally followed by a dot and one or two
// fractional digits. There is no rounding: "1.005" is rejected instead of
// being silently rounded.
//
// Examples:
//
//	ParseAmount("12")     -> 1200 cents
//	ParseAmount("12.3")   -> 1230 cents
//	ParseAmount("12.34")  -> 1234 cents
//	ParseAmount("12,34")  -> error
//
// Amounts above MaxAmount fail with ErrAmountTooLarge.
func ParseAmount(s string) (Money, error) {
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	intPart, fracPart, hasDot := strings.Cut(s, ".")
	if intPart == "" || !allDigits(intPart) {
		return Money{}, ErrInvalidAmount
	}
	if hasDot && (len(fracPart) < 1 || len(fracPart) > 2 || !allDigits(fracPart)) {
		return Money{}, ErrInvalidAmount
	}

	intPart = strings.TrimLeft(intPart, "0")
	if len(intPart) > 10 {
		return Money{}, ErrAmountTooLarge
	}
	var units int64
	if intPart != "" {
		var err error
		units, err = strconv.ParseInt(intPart, 10, 64)
		if err != nil {
			return Money{}, ErrInvalidAmount
		}
	}

	var frac int64
	switch len(fracPart) {
	case 1:
		frac = int64(fracPart[0]-'0') * 10
	case 2:
		frac = int64(fracPart[0]-'0')*10 + int64(fracPart[1]-'0')
	}

	cents := units*100 + frac
	if cents > MaxAmount.Cents {
		return Money{}, ErrAmountTooLarge
	}
	return Money{Cents: cents}, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Add returns m + o, or ErrAmountOverflow when the sum leaves int64.
func (m Money) Add(o Money) (Money, error) {
	if (o.Cents > 0 && m.Cents > math.MaxInt64-o.Cents) ||
		(o.Cents < 0 && m.Cents < math.MinInt64-o.Cents) {
		return Money{}, ErrAmountOverflow
	}
	return Money{Cents: m.Cents + o.Cents}, nil
}

// Sub returns m - o. The result may be negative.
func (m Money) Sub(o Money) (Money, error) {
	if (o.Cents < 0 && m.Cents > math.MaxInt64+o.Cents) ||
		(o.Cents > 0 && m.Cents < math.MinInt64+o.Cents) {
		return Money{}, ErrAmountOverflow
	}
	return Money{Cents: m.Cents - o.Cents}, nil
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m.Cents < 0
}

// String formats the amount as "1234.56", with a leading '-' for negatives.
func (m Money) String() string {
	neg := m.Cents < 0
	cents := uint64(m.Cents)
	if neg {
		cents = -cents
	}
	units := cents / 100
	rem := cents % 100

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(strconv.FormatUint(units, 10))
	b.WriteByte('.')
	if rem < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatUint(rem, 10))
	return b.String()
}
