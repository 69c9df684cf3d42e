package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Rate is an exchange-rate snapshot between USD and LC. Sales and debt
// payments store it at commit time and every later conversion for that
// record goes through the stored copy.
type Rate struct {
	USDToLC decimal.Decimal `json:"usd_to_lc"`
	LCToUSD decimal.Decimal `json:"lc_to_usd"`
}

// NewRate builds a snapshot from LC per USD.
func NewRate(usdToLC decimal.Decimal) (Rate, error) {
	if !usdToLC.IsPositive() {
		return Rate{}, errors.New("exchange rate must be positive")
	}
	return Rate{USDToLC: usdToLC, LCToUSD: decimal.NewFromInt(1).Div(usdToLC)}, nil
}

// RateFromSnapshot restores a snapshot read from storage. A missing LC->USD
// side is derived from the USD->LC side; a fully empty snapshot falls back
// to fallback.
func RateFromSnapshot(usdToLC, lcToUSD decimal.Decimal, fallback Rate) Rate {
	switch {
	case usdToLC.IsPositive() && lcToUSD.IsPositive():
		return Rate{USDToLC: usdToLC, LCToUSD: lcToUSD}
	case usdToLC.IsPositive():
		r, _ := NewRate(usdToLC)
		return r
	case lcToUSD.IsPositive():
		r, _ := NewRate(decimal.NewFromInt(1).Div(lcToUSD))
		r.LCToUSD = lcToUSD
		return r
	}
	return fallback
}

func (r Rate) IsZero() bool {
	return !r.USDToLC.IsPositive()
}

// ToLC converts a USD amount.
func (r Rate) ToLC(usd decimal.Decimal) decimal.Decimal {
	return usd.Mul(r.USDToLC)
}

// ToUSD converts an LC amount. Dividing by USDToLC keeps round trips exact
// for the rates the shop actually uses.
func (r Rate) ToUSD(lc decimal.Decimal) decimal.Decimal {
	if r.USDToLC.IsPositive() {
		return lc.Div(r.USDToLC)
	}
	return lc.Mul(r.LCToUSD)
}

// Convert moves amount from one trading currency to another.
func (r Rate) Convert(amount decimal.Decimal, from, to Currency) decimal.Decimal {
	if from == to {
		return amount
	}
	if from == USD {
		return r.ToLC(amount)
	}
	return r.ToUSD(amount)
}

// Equivalent expresses both sides of a in a single currency.
func (r Rate) Equivalent(a Amounts, in Currency) decimal.Decimal {
	if in == LC {
		return a.LC.Add(r.ToLC(a.USD))
	}
	return a.USD.Add(r.ToUSD(a.LC))
}
