package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceID is the primary key of the singleton balance row.
const BalanceID = 1

// Balance holds the shop's cash in both currencies. Only the repository
// ledger writes it, always together with a TransactionLogEntry.
type Balance struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	USD       decimal.Decimal `gorm:"column:usd;type:text;not null" json:"usd"`
	LC        decimal.Decimal `gorm:"column:lc;type:text;not null" json:"lc"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TransactionLogEntry records one money-moving event. Positive amounts
// enter the shop, negative amounts leave it.
type TransactionLogEntry struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Type          string          `gorm:"size:48;index;not null" json:"type"`
	AmountUSD     decimal.Decimal `gorm:"column:amount_usd;type:text;not null" json:"amount_usd"`
	AmountLC      decimal.Decimal `gorm:"column:amount_lc;type:text;not null" json:"amount_lc"`
	Description   string          `gorm:"size:255" json:"description"`
	ReferenceID   *uint           `gorm:"index" json:"reference_id,omitempty"`
	ReferenceType string          `gorm:"size:32;index" json:"reference_type"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
}

func (TransactionLogEntry) TableName() string { return "transactions" }

// ExchangeRate is one direction of the USD/LC pair. Both directions are
// always written together.
type ExchangeRate struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	FromCurrency string          `gorm:"size:8;uniqueIndex:idx_rate_pair;not null" json:"from_currency"`
	ToCurrency   string          `gorm:"size:8;uniqueIndex:idx_rate_pair;not null" json:"to_currency"`
	Rate         decimal.Decimal `gorm:"type:text;not null" json:"rate"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Setting is a plain key/value row; profit counters live here.
type Setting struct {
	Name      string    `gorm:"primaryKey;size:64" json:"name"`
	Value     string    `gorm:"size:255;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
