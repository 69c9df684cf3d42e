package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Sale is one committed sale. The two exchange-rate columns are the rate
// snapshot taken at commit time; returns read them back instead of the
// live rate.
type Sale struct {
	ID                  uint            `gorm:"primaryKey" json:"id"`
	CustomerName        string          `gorm:"size:128" json:"customer_name"`
	Total               decimal.Decimal `gorm:"type:text;not null" json:"total"`
	Currency            string          `gorm:"size:8;not null" json:"currency"`                                                  // USD / LC
	IsDebt              bool            `gorm:"index;not null" json:"is_debt"`
	IsMultiCurrency     bool            `gorm:"not null" json:"is_multi_currency"`
	PaidUSD             decimal.Decimal `gorm:"column:paid_usd;type:text;not null" json:"paid_usd"`
	PaidLC              decimal.Decimal `gorm:"column:paid_lc;type:text;not null" json:"paid_lc"`
	ExchangeRateUSDToLC decimal.Decimal `gorm:"column:exchange_rate_usd_to_lc;type:text;not null" json:"exchange_rate_usd_to_lc"`
	ExchangeRateLCToUSD decimal.Decimal `gorm:"column:exchange_rate_lc_to_usd;type:text;not null" json:"exchange_rate_lc_to_usd"`
	Discount            datatypes.JSON  `json:"discount"`                                                                         // whole-sale discount and multi-currency breakdown as received
	CreatedAt           time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`

	Items []SaleItem `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// SaleItem is a sale line. Price is the final unit price after discounts;
// Profit and BuyingPriceInSaleCurrency are computed once at settlement.
type SaleItem struct {
	ID                        uint            `gorm:"primaryKey" json:"id"`
	SaleID                    uint            `gorm:"index;not null" json:"sale_id"`
	ProductID                 *uint           `gorm:"index" json:"product_id,omitempty"`
	AccessoryID               *uint           `gorm:"index" json:"accessory_id,omitempty"`
	ItemKind                  string          `gorm:"size:16;not null" json:"item_kind"`                       // product / accessory
	Name                      string          `gorm:"size:128" json:"name"`
	Quantity                  int             `gorm:"not null" json:"quantity"`
	Price                     decimal.Decimal `gorm:"type:text;not null" json:"price"`
	BuyingPrice               decimal.Decimal `gorm:"type:text;not null" json:"buying_price"`
	Currency                  string          `gorm:"size:8;not null" json:"currency"`                         // sale currency
	ProductCurrency           string          `gorm:"size:8;not null" json:"product_currency"`                 // catalog item currency
	DiscountPercent           decimal.Decimal `gorm:"type:text;not null" json:"discount_percent"`
	OriginalSellingPrice      decimal.Decimal `gorm:"type:text;not null" json:"original_selling_price"`
	ProfitInSaleCurrency      decimal.Decimal `gorm:"type:text;not null" json:"profit_in_sale_currency"`
	BuyingPriceInSaleCurrency decimal.Decimal `gorm:"type:text;not null" json:"buying_price_in_sale_currency"`
	ProfitCurrency            string          `gorm:"size:8;not null" json:"profit_currency"`
	CreatedAt                 time.Time       `json:"created_at"`
}
