package extract

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSafeDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12.345", "12.35"},
		{"12.344", "12.34"},
		{"-12.345", "-12.35"},
		{"  7 ", "7"},
		{"1,234.5", "1234.5"},
		{"0.005", "0.01"},
		{"", "0"},
		{"   ", "0"},
		{"abc", "0"},
		{"12 kgf", "0"},
		{"#N/A", "0"},
		{"50%", "0"},
	}

	for _, tt := range tests {
		got := SafeDecimal(tt.in)
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("SafeDecimal(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestSafeDecimal_RoundingIsStable(t *testing.T) {
	once := SafeDecimal("12.345")
	twice := SafeDecimal(once.String())
	if !once.Equal(twice) || twice.StringFixed(2) != "12.35" {
		t.Errorf("re-rounding changed value: %s -> %s", once, twice)
	}
}

func TestSafeInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"4", 4},
		{" 300 ", 300},
		{"+5", 5},
		{"5.0", 0},
		{"-3", 0},
		{"", 0},
		{"fast", 0},
		{"99999999999999999999", 0},
	}

	for _, tt := range tests {
		if got := SafeInt(tt.in); got != tt.want {
			t.Errorf("SafeInt(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
