package engine

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Money is a currency-formatted total. The zero value renders "0.00".
type Money struct {
	Amount decimal.Decimal
}

// String renders with thousands separators and exactly two fractional
// digits, e.g. "1,234.56" or "-12.30"
func (m Money) String() string {
	cents := m.Amount.Round(2).Shift(2).IntPart()
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%s.%02d", sign, humanize.Comma(cents/100), cents%100)
}
