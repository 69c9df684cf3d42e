package service

import (
	"context"
	"path/filepath"
	"testing"

	"phone-shop/internal/config"
	"phone-shop/internal/database"
	"phone-shop/internal/models"
	"phone-shop/internal/money"
	"phone-shop/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func amounts(usd, lc string) money.Amounts {
	return money.Amounts{USD: d(usd), LC: d(lc)}
}

// newTestEngine opens a fresh SQLite file and configures 1440 LC per USD.
func newTestEngine(t *testing.T) (*Engine, *gorm.DB) {
	t.Helper()
	eng, db := newBareEngine(t)
	if err := eng.SetRate(context.Background(), money.USD, money.LC, d("1440")); err != nil {
		t.Fatalf("SetRate failed: %v", err)
	}
	return eng, db
}

// newBareEngine opens a fresh SQLite file without any stored rate.
func newBareEngine(t *testing.T) (*Engine, *gorm.DB) {
	t.Helper()
	db, err := database.Init(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "shop.db")})
	if err != nil {
		t.Fatalf("Init test database failed: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}
	return NewEngine(db, DefaultOptions()), db
}

func addProduct(t *testing.T, eng *Engine, name string, stock int, buy, sell string, cur money.Currency) repository.CatalogRef {
	t.Helper()
	item, err := eng.AddCatalogItem(context.Background(), models.KindProduct, CatalogItemInput{
		Name: name, Stock: stock, BuyingPrice: d(buy), SellingPrice: d(sell), Currency: cur,
	})
	if err != nil {
		t.Fatalf("AddCatalogItem(%s) failed: %v", name, err)
	}
	return item.Ref
}

func stockOf(t *testing.T, db *gorm.DB, ref repository.CatalogRef) int {
	t.Helper()
	item, err := repository.New(db).Catalog.GetItem(ref)
	if err != nil {
		t.Fatalf("GetItem(%s) failed: %v", ref, err)
	}
	return item.Stock
}

func snapshot(t *testing.T, eng *Engine) *Snapshot {
	t.Helper()
	snap, err := eng.Balance(context.Background())
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	return snap
}

func near(a, b decimal.Decimal, eps string) bool {
	return a.Sub(b).Abs().LessThanOrEqual(d(eps))
}

func assertDecimal(t *testing.T, label string, got decimal.Decimal, want string) {
	t.Helper()
	if !near(got, d(want), "0.0001") {
		t.Errorf("%s = %s, want %s", label, got.String(), want)
	}
}

func assertAmounts(t *testing.T, label string, got money.Amounts, usd, lc string) {
	t.Helper()
	if !near(got.USD, d(usd), "0.0001") || !near(got.LC, d(lc), "0.01") {
		t.Errorf("%s = %s, want %s USD / %s LC", label, got, usd, lc)
	}
}

// assertReconciled checks that the balance equals the signed sum of the log.
func assertReconciled(t *testing.T, eng *Engine) {
	t.Helper()
	drift, err := eng.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if !drift.IsZero() {
		t.Errorf("balance drifted from transaction log by %s", drift)
	}
}

func sellOne(t *testing.T, eng *Engine, ref repository.CatalogRef, qty int, price string, cur money.Currency) *SaleResult {
	t.Helper()
	total := d(price).Mul(decimal.NewFromInt(int64(qty)))
	res, err := eng.CommitSale(context.Background(), SaleInput{
		Items:    []SaleItemInput{{Ref: ref, Quantity: qty, SellingPrice: d(price)}},
		Total:    total,
		Currency: cur,
	})
	if err != nil {
		t.Fatalf("CommitSale failed: %v", err)
	}
	return res
}
