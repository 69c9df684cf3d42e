package repository

import (
	"errors"
	"fmt"

	"phone-shop/internal/models"
	"phone-shop/internal/money"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Rates persists directional exchange rates.
type Rates struct {
	db *gorm.DB
}

// Get returns the stored rate for from->to and whether one exists.
func (r *Rates) Get(from, to money.Currency) (decimal.Decimal, bool, error) {
	var row models.ExchangeRate
	err := r.db.Where("from_currency = ? AND to_currency = ?", string(from), string(to)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("get rate %s->%s: %w", from, to, err)
	}
	if !row.Rate.IsPositive() {
		return decimal.Zero, false, nil
	}
	return row.Rate, true, nil
}

// Set writes rate for from->to and 1/rate for to->from.
func (r *Rates) Set(from, to money.Currency, rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return fmt.Errorf("rate must be positive, got %s", rate)
	}
	rows := []models.ExchangeRate{
		{FromCurrency: string(from), ToCurrency: string(to), Rate: rate},
		{FromCurrency: string(to), ToCurrency: string(from), Rate: decimal.NewFromInt(1).Div(rate)},
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "from_currency"}, {Name: "to_currency"}},
		DoUpdates: clause.AssignmentColumns([]string{"rate", "updated_at"}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("set rate %s->%s: %w", from, to, err)
	}
	return nil
}
