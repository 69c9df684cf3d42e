package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BuyingHistory is one inbound purchase from a supplier. For MULTI entries
// TotalPrice is the USD equivalent at the frozen rate and the cash actually
// paid sits in MultiCurrencyUSD / MultiCurrencyLC.
type BuyingHistory struct {
	ID                  uint            `gorm:"primaryKey" json:"id"`
	CompanyName         string          `gorm:"size:128;index" json:"company_name"`
	TotalPrice          decimal.Decimal `gorm:"type:text;not null" json:"total_price"`
	Currency            string          `gorm:"size:8;not null" json:"currency"`                                                  // USD / LC / MULTI
	MultiCurrencyUSD    decimal.Decimal `gorm:"column:multi_currency_usd;type:text;not null" json:"multi_currency_usd"`
	MultiCurrencyLC     decimal.Decimal `gorm:"column:multi_currency_lc;type:text;not null" json:"multi_currency_lc"`
	ExchangeRateUSDToLC decimal.Decimal `gorm:"column:exchange_rate_usd_to_lc;type:text;not null" json:"exchange_rate_usd_to_lc"`
	ExchangeRateLCToUSD decimal.Decimal `gorm:"column:exchange_rate_lc_to_usd;type:text;not null" json:"exchange_rate_lc_to_usd"`
	CreatedAt           time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`

	Items []BuyingHistoryItem `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// BuyingHistoryItem is one purchased line. UnitPrice is in the entry
// currency (USD for MULTI entries).
type BuyingHistoryItem struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	BuyingHistoryID uint            `gorm:"index;not null" json:"buying_history_id"`
	ProductID       *uint           `gorm:"index" json:"product_id,omitempty"`
	AccessoryID     *uint           `gorm:"index" json:"accessory_id,omitempty"`
	ItemKind        string          `gorm:"size:16;not null" json:"item_kind"`
	Name            string          `gorm:"size:128" json:"name"`
	Quantity        int             `gorm:"not null" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:text;not null" json:"unit_price"`
	TotalPrice      decimal.Decimal `gorm:"type:text;not null" json:"total_price"`
}
