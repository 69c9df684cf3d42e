package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Catalog item kinds.
const (
	KindProduct   = "product"
	KindAccessory = "accessory"
)

// Product is a phone or other tracked device.
type Product struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"size:128;not null" json:"name"`
	Brand        string          `gorm:"size:64" json:"brand"`
	Model        string          `gorm:"size:64" json:"model"`
	Stock        int             `gorm:"not null" json:"stock"`
	BuyingPrice  decimal.Decimal `gorm:"type:text;not null" json:"buying_price"`
	SellingPrice decimal.Decimal `gorm:"type:text;not null" json:"selling_price"`
	Currency     string          `gorm:"size:8;not null;default:USD" json:"currency"`
	Archived     bool            `gorm:"index;not null" json:"archived"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Accessory is a case, charger, cable and the like.
type Accessory struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"size:128;not null" json:"name"`
	Brand        string          `gorm:"size:64" json:"brand"`
	Type         string          `gorm:"size:64" json:"type"`
	Stock        int             `gorm:"not null" json:"stock"`
	BuyingPrice  decimal.Decimal `gorm:"type:text;not null" json:"buying_price"`
	SellingPrice decimal.Decimal `gorm:"type:text;not null" json:"selling_price"`
	Currency     string          `gorm:"size:8;not null;default:USD" json:"currency"`
	Archived     bool            `gorm:"index;not null" json:"archived"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
