package database

import (
	"fmt"

	"phone-shop/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.AuditLog{},
		&models.Product{},
		&models.Accessory{},
		&models.Balance{},
		&models.TransactionLogEntry{},
		&models.ExchangeRate{},
		&models.Setting{},
		&models.Sale{},
		&models.SaleItem{},
		&models.CustomerDebt{},
		&models.CompanyDebt{},
		&models.PersonalLoan{},
		&models.DebtPayment{},
		&models.BuyingHistory{},
		&models.BuyingHistoryItem{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
