package service

import (
	"context"
	"errors"
	"testing"

	"phone-shop/internal/models"
	"phone-shop/internal/money"
	"phone-shop/internal/repository"
)

// TestPayCompanyDebt_FullyInLocalCurrency pays a 100 USD supplier debt with 144000 LC.
func TestPayCompanyDebt_FullyInLocalCurrency(t *testing.T) {
	eng, db := newTestEngine(t)
	ctx := context.Background()

	debt, err := eng.CreateCompanyDebt(ctx, CompanyDebtInput{CompanyName: "Al-Noor", Currency: money.USD, Amount: d("100")})
	if err != nil {
		t.Fatalf("CreateCompanyDebt failed: %v", err)
	}

	res, err := eng.PayCompanyDebt(ctx, debt.ID, amounts("0", "144000"))
	if err != nil {
		t.Fatalf("PayCompanyDebt failed: %v", err)
	}
	if !res.FullyPaid {
		t.Errorf("debt should be fully paid, remaining %s", res.Remaining)
	}
	assertAmounts(t, "paid", res.Paid, "0", "144000")
	assertAmounts(t, "change", res.Change, "0", "0")

	snap := snapshot(t, eng)
	assertAmounts(t, "balance", snap.Balance, "0", "-144000")

	var stored models.CompanyDebt
	if err := db.First(&stored, debt.ID).Error; err != nil {
		t.Fatalf("reload debt: %v", err)
	}
	if stored.PaidAt == nil {
		t.Error("paid_at should be set")
	}
	assertDecimal(t, "payment_lc_amount", stored.PaymentLCAmount, "144000")
	assertDecimal(t, "payment rate", stored.PaymentExchangeRateUSDToLC, "1440")

	var payments []models.DebtPayment
	db.Where("debt_type = ? AND debt_id = ?", models.DebtCompany, debt.ID).Find(&payments)
	if len(payments) != 1 || payments[0].CurrencyUsed != "LC" {
		t.Fatalf("payments = %+v, want one LC payment", payments)
	}
	assertDecimal(t, "applied usd", payments[0].AppliedUSD, "100")

	if _, err := eng.PayCompanyDebt(ctx, debt.ID, amounts("1", "0")); !errors.Is(err, ErrValidation) {
		t.Errorf("paying a settled debt: err = %v, want ErrValidation", err)
	}
	assertReconciled(t, eng)
}

func TestPayCustomerDebt_SettlesCreditSale(t *testing.T) {
	eng, db := newTestEngine(t)
	ctx := context.Background()
	ref := addProduct(t, eng, "Honor X8", 1, "60", "100", money.USD)

	sale, err := eng.CommitSale(ctx, SaleInput{
		Items:        []SaleItemInput{{Ref: ref, Quantity: 1, SellingPrice: d("100")}},
		Total:        d("100"),
		Currency:     money.USD,
		IsDebt:       true,
		CustomerName: "Sara",
	})
	if err != nil {
		t.Fatalf("CommitSale failed: %v", err)
	}

	// 1. partial payment in USD
	res, err := eng.PayCustomerDebt(ctx, sale.Debt.ID, amounts("40", "0"))
	if err != nil {
		t.Fatalf("first payment failed: %v", err)
	}
	if res.FullyPaid {
		t.Error("40 of 100 should not close the debt")
	}
	assertAmounts(t, "remaining", res.Remaining, "60", "0")
	assertAmounts(t, "profit before settlement", snapshot(t, eng).Profit, "0", "0")

	// 2. the rest in LC, with too much cash handed over
	res, err = eng.PayCustomerDebt(ctx, sale.Debt.ID, amounts("0", "100000"))
	if err != nil {
		t.Fatalf("second payment failed: %v", err)
	}
	if !res.FullyPaid {
		t.Errorf("debt should be paid, remaining %s", res.Remaining)
	}
	assertAmounts(t, "paid", res.Paid, "0", "86400")
	assertAmounts(t, "change", res.Change, "0", "13600")

	snap := snapshot(t, eng)
	assertAmounts(t, "balance", snap.Balance, "40", "86400")
	assertAmounts(t, "profit", snap.Profit, "40", "0")

	var stored models.Sale
	if err := db.First(&stored, sale.Sale.ID).Error; err != nil {
		t.Fatalf("reload sale: %v", err)
	}
	assertDecimal(t, "sale paid_usd", stored.PaidUSD, "40")
	assertDecimal(t, "sale paid_lc", stored.PaidLC, "86400")
	if !stored.IsMultiCurrency {
		t.Error("sale paid in both currencies should be multi-currency")
	}

	if _, err := eng.PayCustomerDebt(ctx, sale.Debt.ID, amounts("1", "0")); !errors.Is(err, ErrValidation) {
		t.Errorf("paying a settled debt: err = %v, want ErrValidation", err)
	}
	assertReconciled(t, eng)
}

func TestPayCustomerDebt_Tolerance(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	debt, err := eng.CreateCustomerDebt(ctx, CustomerDebtInput{CustomerName: "Omar", Amount: d("144000"), Currency: money.LC})
	if err != nil {
		t.Fatalf("CreateCustomerDebt failed: %v", err)
	}
	res, err := eng.PayCustomerDebt(ctx, debt.ID, amounts("0", "143999.5"))
	if err != nil {
		t.Fatalf("PayCustomerDebt failed: %v", err)
	}
	if !res.FullyPaid {
		t.Errorf("half a unit short should count as paid, remaining %s", res.Remaining)
	}
}

func TestPayCustomerDebt_NotFound(t *testing.T) {
	eng, _ := newTestEngine(t)
	if _, err := eng.PayCustomerDebt(context.Background(), 42, amounts("10", "0")); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, err := eng.PayCustomerDebt(context.Background(), 42, amounts("0", "0")); !errors.Is(err, ErrValidation) {
		t.Errorf("zero payment err = %v, want ErrValidation", err)
	}
}

func TestCreateCompanyDebt_Discounts(t *testing.T) {
	eng, db := newTestEngine(t)
	ctx := context.Background()

	pct, err := eng.CreateCompanyDebt(ctx, CompanyDebtInput{
		CompanyName: "Zain Supply", Currency: money.USD, Amount: d("200"),
		Discount: &DiscountInput{Type: DiscountPercentage, Value: d("10")},
	})
	if err != nil {
		t.Fatalf("percentage discount failed: %v", err)
	}
	assertDecimal(t, "discounted amount", pct.Amount, "180")
	assertDecimal(t, "original amount", pct.OriginalAmount, "200")

	// 80 USD off a 50 USD + 144000 LC debt: 50 from USD, 30 USD worth from LC
	multi, err := eng.CreateCompanyDebt(ctx, CompanyDebtInput{
		CompanyName: "Zain Supply", Currency: money.MULTI, USDAmount: d("50"), LCAmount: d("144000"),
		Discount: &DiscountInput{Type: DiscountFixed, Value: d("80")},
	})
	if err != nil {
		t.Fatalf("multi discount failed: %v", err)
	}
	assertDecimal(t, "usd part", multi.USDAmount, "0")
	assertDecimal(t, "lc part", multi.LCAmount, "100800")

	_, err = eng.CreateCompanyDebt(ctx, CompanyDebtInput{
		CompanyName: "Korek Parts", Currency: money.LC, Amount: d("1000"),
		Discount: &DiscountInput{Type: DiscountFixed, Value: d("5000")},
	})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("discount covering the whole debt: err = %v, want ErrValidation", err)
	}
	var count int64
	db.Model(&models.CompanyDebt{}).Where("company_name = ?", "Korek Parts").Count(&count)
	if count != 0 {
		t.Errorf("company debts = %d, want none stored", count)
	}
}

func TestPayCompanyDebtsTotal_OldestFirst(t *testing.T) {
	eng, db := newTestEngine(t)
	ctx := context.Background()

	usd, _ := eng.CreateCompanyDebt(ctx, CompanyDebtInput{CompanyName: "Acme", Currency: money.USD, Amount: d("100")})
	lc, _ := eng.CreateCompanyDebt(ctx, CompanyDebtInput{CompanyName: "Acme", Currency: money.LC, Amount: d("144000")})
	multi, _ := eng.CreateCompanyDebt(ctx, CompanyDebtInput{CompanyName: "Acme", Currency: money.MULTI, USDAmount: d("50"), LCAmount: d("72000")})
	if usd == nil || lc == nil || multi == nil {
		t.Fatal("seeding company debts failed")
	}

	res, err := eng.PayCompanyDebtsTotal(ctx, CompanyTotalPaymentInput{CompanyName: "Acme", Payment: amounts("400", "0")})
	if err != nil {
		t.Fatalf("PayCompanyDebtsTotal failed: %v", err)
	}
	if len(res.Settled) != 3 {
		t.Fatalf("settled %d debts, want 3", len(res.Settled))
	}
	wantOrder := []uint{usd.ID, lc.ID, multi.ID}
	for i, s := range res.Settled {
		if s.DebtID != wantOrder[i] {
			t.Errorf("settled[%d] = debt %d, want %d", i, s.DebtID, wantOrder[i])
		}
		if !s.FullyPaid {
			t.Errorf("debt %d should be fully paid, remaining %s", s.DebtID, s.Remaining)
		}
	}
	assertAmounts(t, "paid", res.Paid, "300", "0")
	assertAmounts(t, "left over", res.RemainingPayment, "100", "0")
	if !res.HasOverpayment {
		t.Error("100 USD left should be reported as overpayment")
	}
	assertAmounts(t, "balance", snapshot(t, eng).Balance, "-300", "0")

	var payments []models.DebtPayment
	db.Where("debt_type = ?", models.DebtCompany).Find(&payments)
	if len(payments) != 3 {
		t.Fatalf("payments = %d, want 3", len(payments))
	}
	for _, p := range payments {
		if p.BatchID != res.BatchID {
			t.Errorf("payment %d batch = %q, want %q", p.ID, p.BatchID, res.BatchID)
		}
	}

	var logged []models.TransactionLogEntry
	db.Where("type = ?", repository.TxCompanyTotalPayment).Find(&logged)
	if len(logged) != 1 {
		t.Errorf("aggregate log entries = %d, want 1", len(logged))
	}
	assertReconciled(t, eng)

	if _, err := eng.PayCompanyDebtsTotal(ctx, CompanyTotalPaymentInput{CompanyName: "Acme", Payment: amounts("1", "0")}); !errors.Is(err, ErrNotFound) {
		t.Errorf("no open debts: err = %v, want ErrNotFound", err)
	}
}

func TestPayCompanyDebtsTotal_ForceLocalCurrency(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	usd, _ := eng.CreateCompanyDebt(ctx, CompanyDebtInput{CompanyName: "Babil", Currency: money.USD, Amount: d("100")})
	multi, _ := eng.CreateCompanyDebt(ctx, CompanyDebtInput{CompanyName: "Babil", Currency: money.MULTI, USDAmount: d("20"), LCAmount: d("50000")})
	if usd == nil || multi == nil {
		t.Fatal("seeding company debts failed")
	}

	if _, err := eng.PayCompanyDebtsTotal(ctx, CompanyTotalPaymentInput{
		CompanyName: "Babil", Payment: amounts("10", "0"), Mode: ModeForceLC,
	}); !errors.Is(err, ErrValidation) {
		t.Errorf("USD cash with force_lc: err = %v, want ErrValidation", err)
	}

	res, err := eng.PayCompanyDebtsTotal(ctx, CompanyTotalPaymentInput{
		CompanyName: "Babil", Payment: amounts("0", "80000"), Mode: ModeForceLC,
	})
	if err != nil {
		t.Fatalf("PayCompanyDebtsTotal failed: %v", err)
	}
	if len(res.Settled) != 1 || res.Settled[0].DebtID != multi.ID {
		t.Fatalf("settled = %+v, want only the MULTI debt", res.Settled)
	}
	s := res.Settled[0]
	assertAmounts(t, "applied", s.Applied, "0", "50000")
	if s.FullyPaid {
		t.Error("the USD part of the MULTI debt is still open")
	}
	assertAmounts(t, "left over", res.RemainingPayment, "0", "30000")
	assertAmounts(t, "balance", snapshot(t, eng).Balance, "0", "-50000")

	left, err := eng.OutstandingCompanyDebt(ctx, "Babil")
	if err != nil {
		t.Fatalf("OutstandingCompanyDebt failed: %v", err)
	}
	assertAmounts(t, "outstanding", left, "120", "0")
}

func TestPayPersonalLoan(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	loan, err := eng.CreatePersonalLoan(ctx, PersonalLoanInput{PersonName: "Hassan", USDAmount: d("100")})
	if err != nil {
		t.Fatalf("CreatePersonalLoan failed: %v", err)
	}
	assertAmounts(t, "balance after lending", snapshot(t, eng).Balance, "-100", "0")

	_, err = eng.PayPersonalLoan(ctx, loan.ID, amounts("150", "0"))
	var over *OverpaymentError
	if !errors.As(err, &over) {
		t.Fatalf("err = %v, want OverpaymentError", err)
	}
	assertDecimal(t, "overpayment remaining", over.Remaining, "100")

	res, err := eng.PayPersonalLoan(ctx, loan.ID, amounts("0", "72000"))
	if err != nil {
		t.Fatalf("LC repayment failed: %v", err)
	}
	if res.FullyPaid {
		t.Error("half the loan should leave it open")
	}
	assertAmounts(t, "remaining", res.Remaining, "50", "0")

	res, err = eng.PayPersonalLoan(ctx, loan.ID, amounts("50", "0"))
	if err != nil {
		t.Fatalf("USD repayment failed: %v", err)
	}
	if !res.FullyPaid {
		t.Errorf("loan should be closed, remaining %s", res.Remaining)
	}
	assertAmounts(t, "balance", snapshot(t, eng).Balance, "-50", "72000")

	if _, err := eng.PayPersonalLoan(ctx, loan.ID, amounts("1", "0")); !errors.Is(err, ErrValidation) {
		t.Errorf("paying a closed loan: err = %v, want ErrValidation", err)
	}
	assertReconciled(t, eng)
}
