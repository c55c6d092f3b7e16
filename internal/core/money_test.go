package core

import (
	"errors"
	"math"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"0", 0, true},
		{"0.00", 0, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"0.01", 1, true},
		{"1200.50", 120050, true},
		{"9999999999.99", 999999999999, true},
		{"0009999999999.99", 999999999999, true},
		{"10000000000", 0, false},
		{"10000000000.00", 0, false},
		{"90000000000000000", 0, false},
		{"92233720368547758.08", 0, false},
		{"1,23", 0, false},
		{"1.005", 0, false},
		{" 2.50 ", 0, false},
		{"-1", 0, false},
		{"+1", 0, false},
		{".5", 0, false},
		{"5.", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"1e3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error, got %d", tc.in, got.Cents)
			}
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{150050, "1500.50"},
		{-10000, "-100.00"},
		{-7, "-0.07"},
		{4849950, "48499.50"},
		{math.MinInt64, "-92233720368547758.08"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).String(); got != tc.want {
			t.Errorf("Money{%d}.String() = %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestParseAmount_TooLarge(t *testing.T) {
	for _, in := range []string{"10000000000", "99999999999.99", "90000000000000000"} {
		if _, err := ParseAmount(in); !errors.Is(err, ErrAmountTooLarge) {
			t.Errorf("%q: err = %v, want ErrAmountTooLarge", in, err)
		}
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := Money{Cents: 10}
	b := Money{Cents: 25}
	if got, err := a.Add(b); err != nil || got.Cents != 35 {
		t.Fatalf("Add = %d, %v", got.Cents, err)
	}
	if got, err := a.Sub(b); err != nil || got.Cents != -15 || !got.IsNegative() {
		t.Fatalf("Sub = %d, %v", got.Cents, err)
	}

	overflows := []struct {
		name string
		op   func() (Money, error)
	}{
		{"add max", func() (Money, error) { return Money{Cents: math.MaxInt64}.Add(Money{Cents: 1}) }},
		{"add min", func() (Money, error) { return Money{Cents: math.MinInt64}.Add(Money{Cents: -1}) }},
		{"sub min", func() (Money, error) { return Money{Cents: math.MinInt64}.Sub(Money{Cents: 1}) }},
		{"sub max", func() (Money, error) { return Money{Cents: math.MaxInt64}.Sub(Money{Cents: -1}) }},
	}
	for _, tc := range overflows {
		if _, err := tc.op(); !errors.Is(err, ErrAmountOverflow) {
			t.Errorf("%s: err = %v, want ErrAmountOverflow", tc.name, err)
		}
	}
}
