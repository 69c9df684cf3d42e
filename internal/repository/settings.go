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

// Cumulative profit counters.
const (
	ProfitUSD = "profit_total_usd"
	ProfitLC  = "profit_total_lc"
)

// ProfitCounter names the counter that accumulates profit in c.
func ProfitCounter(c money.Currency) string {
	if c == money.LC {
		return ProfitLC
	}
	return ProfitUSD
}

// Settings is the key/value store.
type Settings struct {
	db *gorm.DB
}

// GetCounter returns a decimal counter, zero when unset.
func (s *Settings) GetCounter(name string) (decimal.Decimal, error) {
	var row models.Setting
	err := s.db.First(&row, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("get setting %s: %w", name, err)
	}
	v, err := decimal.NewFromString(row.Value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("setting %s is not a number: %w", name, err)
	}
	return v, nil
}

// SetCounter stores v under name.
func (s *Settings) SetCounter(name string, v decimal.Decimal) error {
	row := models.Setting{Name: name, Value: v.String()}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("set setting %s: %w", name, err)
	}
	return nil
}

// AddCounter adds delta to a counter.
func (s *Settings) AddCounter(name string, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}
	cur, err := s.GetCounter(name)
	if err != nil {
		return err
	}
	return s.SetCounter(name, cur.Add(delta))
}

// AddProfit adds delta to the counter of c.
func (s *Settings) AddProfit(c money.Currency, delta decimal.Decimal) error {
	return s.AddCounter(ProfitCounter(c), delta)
}
