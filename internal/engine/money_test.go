package engine

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoneyString(t *testing.T) {
	cases := []struct {
		amount string
		want   string
	}{
		{"0", "0.00"},
		{"5", "5.00"},
		{"1234.56", "1,234.56"},
		{"1234567.8", "1,234,567.80"},
		{"-12.3", "-12.30"},
		{"-0.5", "-0.50"},
	}

	for _, tc := range cases {
		t.Run(tc.amount, func(t *testing.T) {
			m := Money{Amount: decimal.RequireFromString(tc.amount)}
			if got := m.String(); got != tc.want {
				t.Errorf("Money(%s) = %q, want %q", tc.amount, got, tc.want)
			}
		})
	}
}
