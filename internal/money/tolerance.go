package money

import "github.com/shopspring/decimal"

// Tolerance is the residual below which an outstanding balance counts as
// settled, one threshold per currency.
type Tolerance struct {
	USD decimal.Decimal
	LC  decimal.Decimal
}

// Default thresholds per debt kind. Company debts use a coarser LC threshold
// so supplier balances are not left open over a few hundred LC of noise.
var (
	CustomerTolerance = Tolerance{USD: decimal.RequireFromString("0.01"), LC: decimal.NewFromInt(1)}
	CompanyTolerance  = Tolerance{USD: decimal.RequireFromString("0.01"), LC: decimal.NewFromInt(250)}
	LoanTolerance     = Tolerance{USD: decimal.RequireFromString("0.01"), LC: decimal.NewFromInt(1)}
)

// Covers reports whether every side of remaining is within the threshold.
func (t Tolerance) Covers(remaining Amounts) bool {
	return remaining.USD.LessThanOrEqual(t.USD) && remaining.LC.LessThanOrEqual(t.LC)
}

// In returns the threshold for c.
func (t Tolerance) In(c Currency) decimal.Decimal {
	if c == LC {
		return t.LC
	}
	return t.USD
}
