// Package money holds the currency primitives shared by settlement, debt
// allocation and reversal: the two-currency amount pair, the frozen exchange
// rate snapshot, the cross-currency allocator and the paid-in-full tolerance.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is one of the shop's two trading currencies, or MULTI for a
// principal split across both.
type Currency string

const (
	USD   Currency = "USD"
	LC    Currency = "LC"
	MULTI Currency = "MULTI"
)

// ParseCurrency accepts case-insensitive names. IQD is kept as an alias for
// LC because older clients send it.
func ParseCurrency(s string) (Currency, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "USD":
		return USD, nil
	case "LC", "IQD":
		return LC, nil
	case "MULTI":
		return MULTI, nil
	}
	return "", fmt.Errorf("unsupported currency %q", s)
}

// IsTrading reports whether c is USD or LC.
func (c Currency) IsTrading() bool {
	return c == USD || c == LC
}

// Other returns the opposite trading currency.
func (c Currency) Other() Currency {
	if c == USD {
		return LC
	}
	return USD
}

func (c Currency) String() string { return string(c) }

// Zero is a convenience alias.
var Zero = decimal.Zero

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// NonNegative clamps d at zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
