package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amounts is a pair of sums, one per trading currency.
type Amounts struct {
	USD decimal.Decimal `json:"usd"`
	LC  decimal.Decimal `json:"lc"`
}

// In builds an Amounts holding v in the given currency.
func In(c Currency, v decimal.Decimal) Amounts {
	if c == LC {
		return Amounts{LC: v}
	}
	return Amounts{USD: v}
}

func (a Amounts) Add(b Amounts) Amounts {
	return Amounts{USD: a.USD.Add(b.USD), LC: a.LC.Add(b.LC)}
}

func (a Amounts) Sub(b Amounts) Amounts {
	return Amounts{USD: a.USD.Sub(b.USD), LC: a.LC.Sub(b.LC)}
}

func (a Amounts) Neg() Amounts {
	return Amounts{USD: a.USD.Neg(), LC: a.LC.Neg()}
}

// Scale multiplies both sides by f.
func (a Amounts) Scale(f decimal.Decimal) Amounts {
	return Amounts{USD: a.USD.Mul(f), LC: a.LC.Mul(f)}
}

func (a Amounts) IsZero() bool {
	return a.USD.IsZero() && a.LC.IsZero()
}

// IsNegative reports whether either side is below zero.
func (a Amounts) IsNegative() bool {
	return a.USD.IsNegative() || a.LC.IsNegative()
}

// ClampZero raises negative sides to zero.
func (a Amounts) ClampZero() Amounts {
	return Amounts{USD: NonNegative(a.USD), LC: NonNegative(a.LC)}
}

// Get returns the side for c.
func (a Amounts) Get(c Currency) decimal.Decimal {
	if c == LC {
		return a.LC
	}
	return a.USD
}

// Only keeps the side for c and zeroes the other one.
func (a Amounts) Only(c Currency) Amounts {
	return In(c, a.Get(c))
}

// Currency reports which sides are non-zero: USD, LC or MULTI. An empty pair
// reports USD.
func (a Amounts) Currency() Currency {
	switch {
	case !a.USD.IsZero() && !a.LC.IsZero():
		return MULTI
	case !a.LC.IsZero():
		return LC
	}
	return USD
}

func (a Amounts) String() string {
	return fmt.Sprintf("%s USD / %s LC", a.USD.String(), a.LC.String())
}
