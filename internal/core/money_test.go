package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in    string
		cents int64
		ok    bool
	}{
		{"200", 20000, true},
		{"12.34", 1234, true},
		{"12,34", 1234, true},
		{"12.344", 1234, true}, // third decimal below 5 truncates
		{"12.345", 1235, true}, // half-up on the third decimal
		{"12.346", 1235, true},
		{"0.01", 1, true},
		{" 5 ", 500, true},
		{"", 0, false},
		{"0", 0, false},
		{"-1", 0, false},
		{"+1", 0, false},
		{"1.2.3", 0, false},
		{"abc", 0, false},
		{"12a", 0, false},
	}
	for i, tc := range cases {
		cents, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("case %d (%q): expected ok, got %v", i, tc.in, err)
			}
			if cents != tc.cents {
				t.Fatalf("case %d (%q): expected %d, got %d", i, tc.in, tc.cents, cents)
			}
		} else if err == nil {
			t.Fatalf("case %d (%q): expected error", i, tc.in)
		}
	}
}

func TestMoneyDecimal(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{20000, "200"},
		{20050, "200.5"},
		{1234, "12.34"},
		{5, "0.05"},
		{0, "0"},
		{-1234, "-12.34"},
	}
	for i, tc := range cases {
		if got := (Money{Cents: tc.cents}).Decimal(); got != tc.want {
			t.Fatalf("case %d: expected %q, got %q", i, tc.want, got)
		}
	}
}

func TestMoneyArithmetic(t *testing.T) {
	if got := (Money{Cents: 100}).Add(Money{Cents: 50}); got.Cents != 150 {
		t.Fatalf("Add: got %d", got.Cents)
	}
	if got := (Money{Cents: 100}).SubFloor(Money{Cents: 30}); got.Cents != 70 {
		t.Fatalf("SubFloor: got %d", got.Cents)
	}
	if got := (Money{Cents: 100}).SubFloor(Money{Cents: 150}); got.Cents != 0 {
		t.Fatalf("SubFloor should clamp at zero, got %d", got.Cents)
	}
}
