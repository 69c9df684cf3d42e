package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"phone-shop/internal/models"
	"phone-shop/internal/money"
	"phone-shop/internal/repository"
)

// TestCommitSale_LocalCurrency sells one unit bought for 100 LC at 150 LC.
func TestCommitSale_LocalCurrency(t *testing.T) {
	eng, db := newTestEngine(t)
	ref := addProduct(t, eng, "Galaxy A15", 3, "100", "150", money.LC)

	res := sellOne(t, eng, ref, 1, "150", money.LC)

	assertDecimal(t, "profit", res.Profit, "50")
	if res.ProfitCurrency != money.LC {
		t.Errorf("profit currency = %s, want LC", res.ProfitCurrency)
	}
	assertDecimal(t, "stored item profit", res.Sale.Items[0].ProfitInSaleCurrency, "50")

	snap := snapshot(t, eng)
	assertAmounts(t, "balance", snap.Balance, "0", "150")
	assertAmounts(t, "profit counters", snap.Profit, "0", "50")
	if got := stockOf(t, db, ref); got != 2 {
		t.Errorf("stock = %d, want 2", got)
	}
	assertReconciled(t, eng)
}

// TestCommitSale_CrossCurrencyCost prices in USD an item bought in LC.
func TestCommitSale_CrossCurrencyCost(t *testing.T) {
	eng, _ := newTestEngine(t)
	ref := addProduct(t, eng, "Redmi 13", 1, "72000", "100", money.LC)

	res := sellOne(t, eng, ref, 1, "100", money.USD)

	item := res.Sale.Items[0]
	assertDecimal(t, "cost in sale currency", item.BuyingPriceInSaleCurrency, "50")
	assertDecimal(t, "profit", res.Profit, "50")
	if item.ProductCurrency != "LC" {
		t.Errorf("product currency = %s, want LC", item.ProductCurrency)
	}
	assertDecimal(t, "rate snapshot", res.Sale.ExchangeRateUSDToLC, "1440")

	snap := snapshot(t, eng)
	assertAmounts(t, "balance", snap.Balance, "100", "0")
	assertAmounts(t, "profit counters", snap.Profit, "50", "0")
}

func TestCommitSale_InsufficientStock(t *testing.T) {
	eng, db := newTestEngine(t)
	ref := addProduct(t, eng, "iPhone 15", 1, "700", "900", money.USD)

	// two lines for the same item count together
	_, err := eng.CommitSale(context.Background(), SaleInput{
		Items: []SaleItemInput{
			{Ref: ref, Quantity: 1, SellingPrice: d("900")},
			{Ref: ref, Quantity: 1, SellingPrice: d("900")},
		},
		Total:    d("1800"),
		Currency: money.USD,
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) || stockErr.Available != 1 || stockErr.Required != 2 {
		t.Errorf("stock error = %+v, want available 1 required 2", stockErr)
	}

	if got := stockOf(t, db, ref); got != 1 {
		t.Errorf("stock = %d after failed sale, want 1", got)
	}
	snap := snapshot(t, eng)
	assertAmounts(t, "balance", snap.Balance, "0", "0")
}

func TestCommitSale_Rejects(t *testing.T) {
	eng, _ := newTestEngine(t)
	ref := addProduct(t, eng, "Charger", 5, "5", "10", money.USD)
	ctx := context.Background()

	tests := []struct {
		name string
		in   SaleInput
		want error
	}{
		{"no items", SaleInput{Total: d("10"), Currency: money.USD}, ErrValidation},
		{"zero total", SaleInput{Items: []SaleItemInput{{Ref: ref, Quantity: 1, SellingPrice: d("10")}}, Currency: money.USD}, ErrValidation},
		{"bad currency", SaleInput{Items: []SaleItemInput{{Ref: ref, Quantity: 1, SellingPrice: d("10")}}, Total: d("10"), Currency: "EUR"}, ErrValidation},
		{"zero quantity", SaleInput{Items: []SaleItemInput{{Ref: ref, SellingPrice: d("10")}}, Total: d("10"), Currency: money.USD}, ErrValidation},
		{"credit without customer", SaleInput{Items: []SaleItemInput{{Ref: ref, Quantity: 1, SellingPrice: d("10")}}, Total: d("10"), Currency: money.USD, IsDebt: true}, ErrValidation},
		{"missing item", SaleInput{Items: []SaleItemInput{{Ref: repository.ProductRef(999), Quantity: 1, SellingPrice: d("10")}}, Total: d("10"), Currency: money.USD}, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := eng.CommitSale(ctx, tt.in); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
	assertAmounts(t, "balance", snapshot(t, eng).Balance, "0", "0")
}

func TestCommitSale_GlobalDiscount(t *testing.T) {
	eng, _ := newTestEngine(t)
	phone := addProduct(t, eng, "Pixel 8", 2, "60", "100", money.USD)
	cover := addProduct(t, eng, "Pixel case", 4, "10", "50", money.USD)

	res, err := eng.CommitSale(context.Background(), SaleInput{
		Items: []SaleItemInput{
			{Ref: phone, Quantity: 1, SellingPrice: d("100")},
			{Ref: cover, Quantity: 2, SellingPrice: d("50")},
		},
		Total:    d("180"),
		Currency: money.USD,
		Discount: &DiscountInput{Type: DiscountPercentage, Value: d("10")},
	})
	if err != nil {
		t.Fatalf("CommitSale failed: %v", err)
	}

	assertDecimal(t, "phone price", res.Sale.Items[0].Price, "90")
	assertDecimal(t, "case price", res.Sale.Items[1].Price, "45")
	assertDecimal(t, "profit", res.Profit, "100") // (90-60) + 2*(45-10)

	var stored discountSnapshot
	if err := json.Unmarshal(res.Sale.Discount, &stored); err != nil {
		t.Fatalf("decode discount snapshot: %v", err)
	}
	if stored.Discount == nil || stored.Discount.Type != DiscountPercentage {
		t.Errorf("discount snapshot = %+v", stored.Discount)
	}
}

func TestCommitSale_ZeroDiscountKeepsPrice(t *testing.T) {
	eng, _ := newTestEngine(t)
	ref := addProduct(t, eng, "Nokia 105", 1, "15", "25", money.USD)

	res, err := eng.CommitSale(context.Background(), SaleInput{
		Items:    []SaleItemInput{{Ref: ref, Quantity: 1, SellingPrice: d("25"), DiscountPercent: d("0")}},
		Total:    d("25"),
		Currency: money.USD,
		Discount: &DiscountInput{Type: DiscountPercentage, Value: d("0")},
	})
	if err != nil {
		t.Fatalf("CommitSale failed: %v", err)
	}
	item := res.Sale.Items[0]
	if !item.Price.Equal(item.OriginalSellingPrice) {
		t.Errorf("final price %s != original %s", item.Price, item.OriginalSellingPrice)
	}
}

func TestCommitSale_MultiCurrency(t *testing.T) {
	eng, _ := newTestEngine(t)
	ref := addProduct(t, eng, "Galaxy S24", 1, "60", "100", money.USD)

	res, err := eng.CommitSale(context.Background(), SaleInput{
		Items:    []SaleItemInput{{Ref: ref, Quantity: 1, SellingPrice: d("100")}},
		Total:    d("100"),
		Currency: money.USD,
		MultiCurrency: &MultiCurrencyPayment{
			USDAmount:     d("50"),
			LCAmount:      d("80000"),
			ChangeGivenLC: d("8000"),
		},
	})
	if err != nil {
		t.Fatalf("CommitSale failed: %v", err)
	}

	if !res.Sale.IsMultiCurrency {
		t.Error("sale should be flagged multi-currency")
	}
	assertAmounts(t, "received", res.Received, "50", "72000")
	assertDecimal(t, "paid_lc", res.Sale.PaidLC, "72000")
	if res.ProfitCurrency != money.USD {
		t.Errorf("profit currency = %s, want USD", res.ProfitCurrency)
	}
	assertDecimal(t, "profit", res.Profit, "40")

	snap := snapshot(t, eng)
	assertAmounts(t, "balance", snap.Balance, "50", "72000")
	assertAmounts(t, "profit counters", snap.Profit, "40", "0")
	assertReconciled(t, eng)
}

func TestCommitSale_CreditSaleDefersCashAndProfit(t *testing.T) {
	eng, db := newTestEngine(t)
	ref := addProduct(t, eng, "Oppo A78", 2, "60", "100", money.USD)

	res, err := eng.CommitSale(context.Background(), SaleInput{
		Items:        []SaleItemInput{{Ref: ref, Quantity: 1, SellingPrice: d("100")}},
		Total:        d("100"),
		Currency:     money.USD,
		IsDebt:       true,
		CustomerName: "Karim",
	})
	if err != nil {
		t.Fatalf("CommitSale failed: %v", err)
	}
	if res.Debt == nil || res.Debt.SaleID == nil || *res.Debt.SaleID != res.Sale.ID {
		t.Fatalf("credit sale should open a linked debt, got %+v", res.Debt)
	}
	assertDecimal(t, "debt amount", res.Debt.Amount, "100")
	assertDecimal(t, "paid_usd", res.Sale.PaidUSD, "0")

	snap := snapshot(t, eng)
	assertAmounts(t, "balance", snap.Balance, "0", "0")
	assertAmounts(t, "profit counters", snap.Profit, "0", "0")
	if got := stockOf(t, db, ref); got != 1 {
		t.Errorf("stock = %d, want 1", got)
	}
}

func TestRates_ResolutionOrder(t *testing.T) {
	eng, db := newBareEngine(t)
	ctx := context.Background()

	got, err := eng.GetRate(ctx, money.USD, money.LC)
	if err != nil {
		t.Fatalf("GetRate failed: %v", err)
	}
	assertDecimal(t, "default rate", got, "1440")

	// only the reverse direction stored
	if err := db.Create(&models.ExchangeRate{FromCurrency: "LC", ToCurrency: "USD", Rate: d("0.0008")}).Error; err != nil {
		t.Fatalf("seed rate: %v", err)
	}
	got, err = eng.GetRate(ctx, money.USD, money.LC)
	if err != nil {
		t.Fatalf("GetRate failed: %v", err)
	}
	assertDecimal(t, "inverse rate", got, "1250")

	if err := eng.SetRate(ctx, money.USD, money.LC, d("1500")); err != nil {
		t.Fatalf("SetRate failed: %v", err)
	}
	got, err = eng.GetRate(ctx, money.LC, money.USD)
	if err != nil {
		t.Fatalf("GetRate failed: %v", err)
	}
	if !got.Mul(d("1500")).Round(10).Equal(d("1")) {
		t.Errorf("LC->USD = %s, want 1/1500", got)
	}

	if err := eng.SetRate(ctx, money.USD, money.LC, d("0")); !errors.Is(err, ErrValidation) {
		t.Errorf("SetRate(0) err = %v, want ErrValidation", err)
	}
}

func TestCommitSale_PersistsDefaultRate(t *testing.T) {
	eng, db := newBareEngine(t)
	ref := addProduct(t, eng, "Tecno Spark", 1, "80", "120", money.USD)

	res := sellOne(t, eng, ref, 1, "120", money.USD)
	assertDecimal(t, "snapshot", res.Sale.ExchangeRateUSDToLC, "1440")

	rate, ok, err := repository.New(db).Rates.Get(money.USD, money.LC)
	if err != nil || !ok {
		t.Fatalf("default rate not stored: ok=%v err=%v", ok, err)
	}
	assertDecimal(t, "stored rate", rate, "1440")
}
