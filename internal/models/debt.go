package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Debt kinds as stored in DebtPayment.DebtType.
const (
	DebtCustomer = "customer"
	DebtCompany  = "company"
	DebtPersonal = "personal"
)

// CustomerDebt is money a customer owes the shop, usually from a credit sale.
type CustomerDebt struct {
	ID                         uint            `gorm:"primaryKey" json:"id"`
	CustomerName               string          `gorm:"size:128;index;not null" json:"customer_name"`
	Amount                     decimal.Decimal `gorm:"type:text;not null" json:"amount"`
	Currency                   string          `gorm:"size:8;not null" json:"currency"`                                                                  // USD / LC
	SaleID                     *uint           `gorm:"index" json:"sale_id,omitempty"`
	Description                string          `gorm:"size:255" json:"description"`
	PaidAt                     *time.Time      `gorm:"index" json:"paid_at,omitempty"`
	PaymentUSDAmount           decimal.Decimal `gorm:"column:payment_usd_amount;type:text;not null" json:"payment_usd_amount"`
	PaymentLCAmount            decimal.Decimal `gorm:"column:payment_lc_amount;type:text;not null" json:"payment_lc_amount"`
	PaymentExchangeRateUSDToLC decimal.Decimal `gorm:"column:payment_exchange_rate_usd_to_lc;type:text;not null" json:"payment_exchange_rate_usd_to_lc"`
	PaymentExchangeRateLCToUSD decimal.Decimal `gorm:"column:payment_exchange_rate_lc_to_usd;type:text;not null" json:"payment_exchange_rate_lc_to_usd"`
	CreatedAt                  time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt                  time.Time       `json:"updated_at"`
}

// CompanyDebt is money the shop owes a supplier. MULTI debts keep two
// independent sub-amounts in USDAmount and LCAmount.
type CompanyDebt struct {
	ID                         uint            `gorm:"primaryKey" json:"id"`
	CompanyName                string          `gorm:"size:128;index;not null" json:"company_name"`
	Description                string          `gorm:"size:255" json:"description"`
	Amount                     decimal.Decimal `gorm:"type:text;not null" json:"amount"`
	Currency                   string          `gorm:"size:8;not null" json:"currency"`                                                                  // USD / LC / MULTI
	USDAmount                  decimal.Decimal `gorm:"column:usd_amount;type:text;not null" json:"usd_amount"`
	LCAmount                   decimal.Decimal `gorm:"column:lc_amount;type:text;not null" json:"lc_amount"`
	OriginalAmount             decimal.Decimal `gorm:"type:text;not null" json:"original_amount"`
	DiscountType               string          `gorm:"size:16" json:"discount_type"`                                                                     // percentage / fixed
	DiscountValue              decimal.Decimal `gorm:"type:text;not null" json:"discount_value"`
	PaidAt                     *time.Time      `gorm:"index" json:"paid_at,omitempty"`
	PaymentUSDAmount           decimal.Decimal `gorm:"column:payment_usd_amount;type:text;not null" json:"payment_usd_amount"`
	PaymentLCAmount            decimal.Decimal `gorm:"column:payment_lc_amount;type:text;not null" json:"payment_lc_amount"`
	PaymentExchangeRateUSDToLC decimal.Decimal `gorm:"column:payment_exchange_rate_usd_to_lc;type:text;not null" json:"payment_exchange_rate_usd_to_lc"`
	PaymentExchangeRateLCToUSD decimal.Decimal `gorm:"column:payment_exchange_rate_lc_to_usd;type:text;not null" json:"payment_exchange_rate_lc_to_usd"`
	CreatedAt                  time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt                  time.Time       `json:"updated_at"`
}

// PersonalLoan is money the shop lent out. A loan may be in both currencies.
type PersonalLoan struct {
	ID                         uint            `gorm:"primaryKey" json:"id"`
	PersonName                 string          `gorm:"size:128;index;not null" json:"person_name"`
	Description                string          `gorm:"size:255" json:"description"`
	USDAmount                  decimal.Decimal `gorm:"column:usd_amount;type:text;not null" json:"usd_amount"`
	LCAmount                   decimal.Decimal `gorm:"column:lc_amount;type:text;not null" json:"lc_amount"`
	PaidAt                     *time.Time      `gorm:"index" json:"paid_at,omitempty"`
	PaymentUSDAmount           decimal.Decimal `gorm:"column:payment_usd_amount;type:text;not null" json:"payment_usd_amount"`
	PaymentLCAmount            decimal.Decimal `gorm:"column:payment_lc_amount;type:text;not null" json:"payment_lc_amount"`
	PaymentExchangeRateUSDToLC decimal.Decimal `gorm:"column:payment_exchange_rate_usd_to_lc;type:text;not null" json:"payment_exchange_rate_usd_to_lc"`
	PaymentExchangeRateLCToUSD decimal.Decimal `gorm:"column:payment_exchange_rate_lc_to_usd;type:text;not null" json:"payment_exchange_rate_lc_to_usd"`
	CreatedAt                  time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt                  time.Time       `json:"updated_at"`
}

// DebtPayment is one payment event against one debt. Rows are never updated
// or deleted. AppliedUSD/AppliedLC is the principal the payment covered, in
// the debt's own currencies, at the rate of the payment.
type DebtPayment struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	DebtType     string          `gorm:"size:16;index:idx_debt_payment_debt;not null" json:"debt_type"`
	DebtID       uint            `gorm:"index:idx_debt_payment_debt;not null" json:"debt_id"`
	PaymentUSD   decimal.Decimal `gorm:"column:payment_usd;type:text;not null" json:"payment_usd"`
	PaymentLC    decimal.Decimal `gorm:"column:payment_lc;type:text;not null" json:"payment_lc"`
	AppliedUSD   decimal.Decimal `gorm:"column:applied_usd;type:text;not null" json:"applied_usd"`
	AppliedLC    decimal.Decimal `gorm:"column:applied_lc;type:text;not null" json:"applied_lc"`
	CurrencyUsed string          `gorm:"size:8;not null" json:"currency_used"`
	RateUSDToLC  decimal.Decimal `gorm:"column:rate_usd_to_lc;type:text;not null" json:"rate_usd_to_lc"`
	RateLCToUSD  decimal.Decimal `gorm:"column:rate_lc_to_usd;type:text;not null" json:"rate_lc_to_usd"`
	BatchID      string          `gorm:"size:36;index" json:"batch_id"`
	PaidAt       time.Time       `gorm:"index;not null" json:"paid_at"`
}
