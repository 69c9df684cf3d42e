package repository

import (
	"errors"
	"fmt"
	"time"

	"phone-shop/internal/models"
	"phone-shop/internal/money"

	"gorm.io/gorm"
)

// Transaction log types.
const (
	TxSale                   = "sale"
	TxSaleReturn             = "sale_return"
	TxSaleItemReturn         = "sale_item_return"
	TxCustomerPaymentFinal   = "customer_debt_payment_final"
	TxCustomerPaymentPartial = "customer_debt_payment_partial"
	TxCompanyPaymentFinal    = "company_debt_payment_final"
	TxCompanyPaymentPartial  = "company_debt_payment_partial"
	TxCompanyTotalPayment    = "company_debt_total_payment"
	TxPersonalLoan           = "personal_loan"
	TxPersonalPaymentFinal   = "personal_loan_payment_final"
	TxPersonalPaymentPartial = "personal_loan_payment_partial"
	TxPurchase               = "purchase"
	TxPurchaseReturn         = "purchase_return"
	TxPurchaseItemReturn     = "purchase_item_return"
	TxManualAdjustment       = "manual_adjustment"
)

// Entry describes the log row written alongside a balance change.
type Entry struct {
	Type          string
	Description   string
	ReferenceID   uint
	ReferenceType string
}

// Ledger owns the balance singleton. Every change to it appends a
// TransactionLogEntry in the same transaction.
type Ledger struct {
	db *gorm.DB
}

func (l *Ledger) load() (*models.Balance, error) {
	var b models.Balance
	err := l.db.First(&b, models.BalanceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		b = models.Balance{ID: models.BalanceID}
		if err := l.db.Create(&b).Error; err != nil {
			return nil, fmt.Errorf("create balance: %w", err)
		}
		return &b, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load balance: %w", err)
	}
	return &b, nil
}

// Balance returns the current cash in both currencies.
func (l *Ledger) Balance() (money.Amounts, error) {
	b, err := l.load()
	if err != nil {
		return money.Amounts{}, err
	}
	return money.Amounts{USD: b.USD, LC: b.LC}, nil
}

// Credit adds a to the balance (money entering the shop).
func (l *Ledger) Credit(a money.Amounts, e Entry) (*models.TransactionLogEntry, error) {
	return l.apply(a, e)
}

// Debit takes a out of the balance (money leaving the shop).
func (l *Ledger) Debit(a money.Amounts, e Entry) (*models.TransactionLogEntry, error) {
	return l.apply(a.Neg(), e)
}

// apply adds a signed delta and logs it. A zero delta changes nothing.
func (l *Ledger) apply(delta money.Amounts, e Entry) (*models.TransactionLogEntry, error) {
	if delta.IsZero() {
		return nil, nil
	}
	b, err := l.load()
	if err != nil {
		return nil, err
	}
	b.USD = b.USD.Add(delta.USD)
	b.LC = b.LC.Add(delta.LC)
	if err := l.db.Model(b).Select("usd", "lc", "updated_at").Updates(b).Error; err != nil {
		return nil, fmt.Errorf("update balance: %w", err)
	}

	entry := &models.TransactionLogEntry{
		Type:          e.Type,
		AmountUSD:     delta.USD,
		AmountLC:      delta.LC,
		Description:   e.Description,
		ReferenceType: e.ReferenceType,
	}
	if e.ReferenceID != 0 {
		id := e.ReferenceID
		entry.ReferenceID = &id
	}
	if err := l.db.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("append transaction log: %w", err)
	}
	return entry, nil
}

// LogSum returns the signed sum of every log entry. It equals Balance as
// long as nothing wrote the balance row outside the ledger.
func (l *Ledger) LogSum() (money.Amounts, error) {
	var rows []models.TransactionLogEntry
	if err := l.db.Select("amount_usd", "amount_lc").Find(&rows).Error; err != nil {
		return money.Amounts{}, err
	}
	var sum money.Amounts
	for _, r := range rows {
		sum.USD = sum.USD.Add(r.AmountUSD)
		sum.LC = sum.LC.Add(r.AmountLC)
	}
	return sum, nil
}

// ListFilter selects log entries for the audit endpoints. Zero values
// disable a condition; End is exclusive.
type ListFilter struct {
	Type   string
	Start  time.Time
	End    time.Time
	Limit  int
	Offset int
}

// Entries lists log entries, newest first.
func (l *Ledger) Entries(f ListFilter) ([]models.TransactionLogEntry, int64, error) {
	base := l.db.Model(&models.TransactionLogEntry{})
	if f.Type != "" {
		base = base.Where("type = ?", f.Type)
	}
	if !f.Start.IsZero() {
		base = base.Where("created_at >= ?", f.Start)
	}
	if !f.End.IsZero() {
		base = base.Where("created_at < ?", f.End)
	}
	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	q := base.Session(&gorm.Session{}).Order("created_at DESC, id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	var rows []models.TransactionLogEntry
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
