// Package repository binds the settlement engine's collaborators (catalog,
// balance ledger, transaction log, exchange rates and settings) to one gorm
// handle. The engine builds a Store per transaction so every read and write
// of an operation goes through the same unit of work.
package repository

import (
	"gorm.io/gorm"
)

// Store groups the collaborators sharing one *gorm.DB, normally a transaction.
type Store struct {
	DB       *gorm.DB
	Catalog  *Catalog
	Ledger   *Ledger
	Rates    *Rates
	Settings *Settings
}

// New binds every collaborator to db.
func New(db *gorm.DB) *Store {
	return &Store{
		DB:       db,
		Catalog:  &Catalog{db: db},
		Ledger:   &Ledger{db: db},
		Rates:    &Rates{db: db},
		Settings: &Settings{db: db},
	}
}
