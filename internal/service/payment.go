package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"phone-shop/internal/models"
	"phone-shop/internal/money"
	"phone-shop/internal/repository"

	"github.com/google/uuid"
)

// PaymentMode 限定供应商整体还款使用的币种
type PaymentMode string

const (
	ModeAny      PaymentMode = "any"
	ModeForceUSD PaymentMode = "force_usd"
	ModeForceLC  PaymentMode = "force_lc"
)

// PaymentResult 单笔欠款的还款结果
type PaymentResult struct {
	DebtID    uint          `json:"debt_id"`
	PaymentID uint          `json:"payment_id"`
	Applied   money.Amounts `json:"applied"`
	Paid      money.Amounts `json:"paid"`
	Change    money.Amounts `json:"change"`
	Remaining money.Amounts `json:"remaining"`
	FullyPaid bool          `json:"fully_paid"`
	Rate      money.Rate    `json:"rate"`
}

// CompanyTotalPaymentInput 用一笔钱按从旧到新偿还某供应商的全部未结欠款
type CompanyTotalPaymentInput struct {
	CompanyName string        `json:"company_name"`
	Payment     money.Amounts `json:"payment"`
	Mode        PaymentMode   `json:"mode"`
}

// DebtSettlement 整体还款中某笔欠款分到的部分
type DebtSettlement struct {
	DebtID    uint          `json:"debt_id"`
	Applied   money.Amounts `json:"applied"`
	Paid      money.Amounts `json:"paid"`
	Remaining money.Amounts `json:"remaining"`
	FullyPaid bool          `json:"fully_paid"`
}

// CompanyTotalResult 供应商整体还款结果
type CompanyTotalResult struct {
	BatchID          string           `json:"batch_id"`
	Settled          []DebtSettlement `json:"settled"`
	Paid             money.Amounts    `json:"paid"`
	RemainingPayment money.Amounts    `json:"remaining_payment"`
	HasOverpayment   bool             `json:"has_overpayment"`
	Rate             money.Rate       `json:"rate"`
}

// debtAccount 分配还款所需的欠款信息
type debtAccount struct {
	kind      string
	id        uint
	principal money.Amounts
	tolerance money.Tolerance
}

type paymentOutcome struct {
	alloc     money.Allocation
	remaining money.Amounts
	fullyPaid bool
	record    models.DebtPayment
}

func validatePayment(p money.Amounts) error {
	if p.IsNegative() {
		return invalid("payment", p.String(), "must not be negative")
	}
	if p.IsZero() {
		return invalid("payment", p.String(), "must be positive")
	}
	return nil
}

// applied 已有还款冲抵的金额合计（欠款自身币种）
func (e *Engine) applied(s *repository.Store, acct debtAccount) (money.Amounts, error) {
	var rows []models.DebtPayment
	if err := s.DB.Select("applied_usd", "applied_lc").
		Where("debt_type = ? AND debt_id = ?", acct.kind, acct.id).
		Find(&rows).Error; err != nil {
		return money.Amounts{}, fmt.Errorf("load payments of %s debt %d: %w", acct.kind, acct.id, err)
	}
	var sum money.Amounts
	for _, r := range rows {
		sum = sum.Add(money.Amounts{USD: r.AppliedUSD, LC: r.AppliedLC})
	}
	return sum, nil
}

// remaining 本金减去已冲抵金额
func (e *Engine) remaining(s *repository.Store, acct debtAccount) (money.Amounts, error) {
	covered, err := e.applied(s, acct)
	if err != nil {
		return money.Amounts{}, err
	}
	return acct.principal.Sub(covered).ClampZero(), nil
}

// allocate 对单笔欠款分配还款并写入 DebtPayment；指定 only 时只偿还该币种部分
func (e *Engine) allocate(s *repository.Store, acct debtAccount, payment money.Amounts, rate money.Rate,
	only money.Currency, batchID string, at time.Time) (paymentOutcome, error) {
	left, err := e.remaining(s, acct)
	if err != nil {
		return paymentOutcome{}, err
	}
	target := left
	if only.IsTrading() {
		target = left.Only(only)
	}

	alloc := money.Allocate(target, payment, rate)
	after := left.Sub(alloc.Applied).ClampZero()
	out := paymentOutcome{
		alloc:     alloc,
		remaining: after,
		fullyPaid: acct.tolerance.Covers(after),
	}
	if alloc.Consumed.IsZero() {
		return out, nil
	}

	out.record = models.DebtPayment{
		DebtType:     acct.kind,
		DebtID:       acct.id,
		PaymentUSD:   alloc.Consumed.USD,
		PaymentLC:    alloc.Consumed.LC,
		AppliedUSD:   alloc.Applied.USD,
		AppliedLC:    alloc.Applied.LC,
		CurrencyUsed: string(alloc.Consumed.Currency()),
		RateUSDToLC:  rate.USDToLC,
		RateLCToUSD:  rate.LCToUSD,
		BatchID:      batchID,
		PaidAt:       at,
	}
	if err := s.DB.Create(&out.record).Error; err != nil {
		return paymentOutcome{}, fmt.Errorf("record payment on %s debt %d: %w", acct.kind, acct.id, err)
	}
	return out, nil
}

var debtPaymentColumns = []string{
	"payment_usd_amount",
	"payment_lc_amount",
	"payment_exchange_rate_usd_to_lc",
	"payment_exchange_rate_lc_to_usd",
	"paid_at",
	"updated_at",
}

func paidType(full bool, final, partial string) string {
	if full {
		return final
	}
	return partial
}

func resultOf(id uint, out paymentOutcome, rate money.Rate) *PaymentResult {
	return &PaymentResult{
		DebtID:    id,
		PaymentID: out.record.ID,
		Applied:   out.alloc.Applied,
		Paid:      out.alloc.Consumed,
		Change:    out.alloc.Leftover,
		Remaining: out.remaining,
		FullyPaid: out.fullyPaid,
		Rate:      rate,
	}
}

// PayCustomerDebt 客户还款；赊销欠款结清时回写销售单实收并确认利润
func (e *Engine) PayCustomerDebt(ctx context.Context, id uint, payment money.Amounts) (*PaymentResult, error) {
	if err := validatePayment(payment); err != nil {
		return nil, err
	}

	var res *PaymentResult
	err := e.inTx(ctx, func(s *repository.Store) error {
		var debt models.CustomerDebt
		if err := s.DB.First(&debt, id).Error; err != nil {
			return notFound(err, "customer debt", id)
		}
		if debt.PaidAt != nil {
			return invalid("debt_id", id, "debt is already paid")
		}
		rate, err := e.resolveRate(s, false)
		if err != nil {
			return err
		}

		now := e.now()
		acct := debtAccount{
			kind:      models.DebtCustomer,
			id:        debt.ID,
			principal: money.In(parseOr(debt.Currency, money.USD), debt.Amount),
			tolerance: e.opts.CustomerTolerance,
		}
		out, err := e.allocate(s, acct, payment, rate, "", "", now)
		if err != nil {
			return err
		}
		if out.alloc.Consumed.IsZero() {
			return invalid("payment", payment.String(), "nothing could be applied to this debt")
		}

		debt.PaymentUSDAmount = debt.PaymentUSDAmount.Add(out.alloc.Consumed.USD)
		debt.PaymentLCAmount = debt.PaymentLCAmount.Add(out.alloc.Consumed.LC)
		debt.PaymentExchangeRateUSDToLC, debt.PaymentExchangeRateLCToUSD = rate.USDToLC, rate.LCToUSD
		if out.fullyPaid {
			debt.PaidAt = &now
		}
		if err := s.DB.Model(&debt).Select(debtPaymentColumns).Updates(&debt).Error; err != nil {
			return fmt.Errorf("update customer debt %d: %w", debt.ID, err)
		}

		if _, err := s.Ledger.Credit(out.alloc.Consumed, repository.Entry{
			Type:          paidType(out.fullyPaid, repository.TxCustomerPaymentFinal, repository.TxCustomerPaymentPartial),
			Description:   fmt.Sprintf("Payment from %s", debt.CustomerName),
			ReferenceID:   debt.ID,
			ReferenceType: "customer_debt",
		}); err != nil {
			return err
		}

		if out.fullyPaid && debt.SaleID != nil {
			if err := e.settleCreditSale(s, &debt); err != nil {
				return err
			}
		}
		res = resultOf(debt.ID, out, rate)
		return nil
	})
	if err != nil {
		e.log.Warn().Err(err).Uint("debt_id", id).Msg("customer payment failed")
		return nil, err
	}
	e.log.Info().
		Uint("debt_id", id).
		Str("paid", res.Paid.String()).
		Bool("fully_paid", res.FullyPaid).
		Msg("customer payment recorded")
	return res, nil
}

// settleCreditSale 把结清欠款的实收写回销售单并计入利润
func (e *Engine) settleCreditSale(s *repository.Store, debt *models.CustomerDebt) error {
	var sale models.Sale
	if err := s.DB.Preload("Items").First(&sale, *debt.SaleID).Error; err != nil {
		return notFound(err, "sale", *debt.SaleID)
	}

	paid := money.Amounts{USD: debt.PaymentUSDAmount, LC: debt.PaymentLCAmount}
	sale.PaidUSD, sale.PaidLC = paid.USD, paid.LC
	// Total 保持定价币种，以另一币种收款时退款以实收拆分为准
	sale.IsMultiCurrency = paid.Currency() != parseOr(sale.Currency, money.USD)
	if err := s.DB.Model(&sale).Select("paid_usd", "paid_lc", "is_multi_currency", "updated_at").Updates(&sale).Error; err != nil {
		return fmt.Errorf("update sale %d: %w", sale.ID, err)
	}

	for i := range sale.Items {
		it := &sale.Items[i]
		if err := s.Settings.AddProfit(parseOr(it.ProfitCurrency, money.USD), it.ProfitInSaleCurrency); err != nil {
			return err
		}
	}
	return nil
}

// PayCompanyDebt 从余额偿还单笔供应商欠款
func (e *Engine) PayCompanyDebt(ctx context.Context, id uint, payment money.Amounts) (*PaymentResult, error) {
	if err := validatePayment(payment); err != nil {
		return nil, err
	}

	var res *PaymentResult
	err := e.inTx(ctx, func(s *repository.Store) error {
		var debt models.CompanyDebt
		if err := s.DB.First(&debt, id).Error; err != nil {
			return notFound(err, "company debt", id)
		}
		if debt.PaidAt != nil {
			return invalid("debt_id", id, "debt is already paid")
		}
		rate, err := e.resolveRate(s, false)
		if err != nil {
			return err
		}

		now := e.now()
		out, err := e.allocate(s, e.companyAccount(&debt), payment, rate, "", "", now)
		if err != nil {
			return err
		}
		if out.alloc.Consumed.IsZero() {
			return invalid("payment", payment.String(), "nothing could be applied to this debt")
		}
		if err := e.updateCompanyDebt(s, &debt, out, rate, now); err != nil {
			return err
		}

		if _, err := s.Ledger.Debit(out.alloc.Consumed, repository.Entry{
			Type:          paidType(out.fullyPaid, repository.TxCompanyPaymentFinal, repository.TxCompanyPaymentPartial),
			Description:   fmt.Sprintf("Payment to %s", debt.CompanyName),
			ReferenceID:   debt.ID,
			ReferenceType: "company_debt",
		}); err != nil {
			return err
		}
		res = resultOf(debt.ID, out, rate)
		return nil
	})
	if err != nil {
		e.log.Warn().Err(err).Uint("debt_id", id).Msg("company payment failed")
		return nil, err
	}
	e.log.Info().
		Uint("debt_id", id).
		Str("paid", res.Paid.String()).
		Bool("fully_paid", res.FullyPaid).
		Msg("company payment recorded")
	return res, nil
}

func (e *Engine) companyAccount(debt *models.CompanyDebt) debtAccount {
	principal := money.Amounts{USD: debt.USDAmount, LC: debt.LCAmount}
	if debt.Currency != string(money.MULTI) {
		principal = money.In(parseOr(debt.Currency, money.USD), debt.Amount)
	}
	return debtAccount{
		kind:      models.DebtCompany,
		id:        debt.ID,
		principal: principal,
		tolerance: e.opts.CompanyTolerance,
	}
}

func (e *Engine) updateCompanyDebt(s *repository.Store, debt *models.CompanyDebt, out paymentOutcome, rate money.Rate, now time.Time) error {
	debt.PaymentUSDAmount = debt.PaymentUSDAmount.Add(out.alloc.Consumed.USD)
	debt.PaymentLCAmount = debt.PaymentLCAmount.Add(out.alloc.Consumed.LC)
	debt.PaymentExchangeRateUSDToLC, debt.PaymentExchangeRateLCToUSD = rate.USDToLC, rate.LCToUSD
	if out.fullyPaid {
		debt.PaidAt = &now
	}
	if err := s.DB.Model(debt).Select(debtPaymentColumns).Updates(debt).Error; err != nil {
		return fmt.Errorf("update company debt %d: %w", debt.ID, err)
	}
	return nil
}

// PayCompanyDebtsTotal 按从旧到新把一笔钱分摊到供应商的未结欠款，剩余部分原样返回
func (e *Engine) PayCompanyDebtsTotal(ctx context.Context, in CompanyTotalPaymentInput) (*CompanyTotalResult, error) {
	if strings.TrimSpace(in.CompanyName) == "" {
		return nil, invalid("company_name", in.CompanyName, "required")
	}
	if err := validatePayment(in.Payment); err != nil {
		return nil, err
	}
	var only money.Currency
	switch in.Mode {
	case "", ModeAny:
	case ModeForceUSD:
		if !in.Payment.LC.IsZero() {
			return nil, invalid("payment.lc", in.Payment.LC, "force_usd pays with USD only")
		}
		only = money.USD
	case ModeForceLC:
		if !in.Payment.USD.IsZero() {
			return nil, invalid("payment.usd", in.Payment.USD, "force_lc pays with LC only")
		}
		only = money.LC
	default:
		return nil, invalid("mode", in.Mode, "must be any, force_usd or force_lc")
	}

	res := CompanyTotalResult{BatchID: uuid.NewString()}
	err := e.inTx(ctx, func(s *repository.Store) error {
		q := s.DB.Where("company_name = ? AND paid_at IS NULL", in.CompanyName)
		if only.IsTrading() {
			q = q.Where("currency IN ?", []string{string(only), string(money.MULTI)})
		}
		var debts []models.CompanyDebt
		if err := q.Order("created_at ASC, id ASC").Find(&debts).Error; err != nil {
			return fmt.Errorf("load company debts: %w", err)
		}
		if len(debts) == 0 {
			return &NotFoundError{Entity: "open company debts for", ID: in.CompanyName}
		}

		rate, err := e.resolveRate(s, false)
		if err != nil {
			return err
		}
		res.Rate = rate

		now := e.now()
		pool := in.Payment
		for i := range debts {
			if pool.IsZero() {
				break
			}
			debt := &debts[i]
			out, err := e.allocate(s, e.companyAccount(debt), pool, rate, only, res.BatchID, now)
			if err != nil {
				return err
			}
			if out.alloc.Consumed.IsZero() {
				continue
			}
			if err := e.updateCompanyDebt(s, debt, out, rate, now); err != nil {
				return err
			}
			pool = out.alloc.Leftover
			res.Paid = res.Paid.Add(out.alloc.Consumed)
			res.Settled = append(res.Settled, DebtSettlement{
				DebtID:    debt.ID,
				Applied:   out.alloc.Applied,
				Paid:      out.alloc.Consumed,
				Remaining: out.remaining,
				FullyPaid: out.fullyPaid,
			})
		}

		res.RemainingPayment = pool
		res.HasOverpayment = !pool.IsZero()
		_, err = s.Ledger.Debit(res.Paid, repository.Entry{
			Type:          repository.TxCompanyTotalPayment,
			Description:   fmt.Sprintf("Payment to %s across %d debts (batch %s)", in.CompanyName, len(res.Settled), res.BatchID),
			ReferenceType: "company",
		})
		return err
	})
	if err != nil {
		e.log.Warn().Err(err).Str("company", in.CompanyName).Msg("company total payment failed")
		return nil, err
	}
	e.log.Info().
		Str("company", in.CompanyName).
		Str("batch_id", res.BatchID).
		Int("debts", len(res.Settled)).
		Str("paid", res.Paid.String()).
		Str("left", res.RemainingPayment.String()).
		Msg("company total payment recorded")
	return &res, nil
}

// PayPersonalLoan 个人借款还款，超出欠额直接拒绝，不找零
func (e *Engine) PayPersonalLoan(ctx context.Context, id uint, payment money.Amounts) (*PaymentResult, error) {
	if err := validatePayment(payment); err != nil {
		return nil, err
	}

	var res *PaymentResult
	err := e.inTx(ctx, func(s *repository.Store) error {
		var loan models.PersonalLoan
		if err := s.DB.First(&loan, id).Error; err != nil {
			return notFound(err, "personal loan", id)
		}
		if loan.PaidAt != nil {
			return invalid("loan_id", id, "loan is already paid")
		}
		rate, err := e.resolveRate(s, false)
		if err != nil {
			return err
		}

		acct := debtAccount{
			kind:      models.DebtPersonal,
			id:        loan.ID,
			principal: money.Amounts{USD: loan.USDAmount, LC: loan.LCAmount},
			tolerance: e.opts.LoanTolerance,
		}
		left, err := e.remaining(s, acct)
		if err != nil {
			return err
		}
		requested := rate.Equivalent(payment, money.USD)
		owed := rate.Equivalent(left, money.USD)
		slack := acct.tolerance.USD.Add(rate.ToUSD(acct.tolerance.LC))
		if requested.GreaterThan(owed.Add(slack)) {
			return &OverpaymentError{Requested: requested, Remaining: owed}
		}

		now := e.now()
		out, err := e.allocate(s, acct, payment, rate, "", "", now)
		if err != nil {
			return err
		}
		if out.alloc.Consumed.IsZero() {
			return invalid("payment", payment.String(), "nothing could be applied to this loan")
		}

		loan.PaymentUSDAmount = loan.PaymentUSDAmount.Add(out.alloc.Consumed.USD)
		loan.PaymentLCAmount = loan.PaymentLCAmount.Add(out.alloc.Consumed.LC)
		loan.PaymentExchangeRateUSDToLC, loan.PaymentExchangeRateLCToUSD = rate.USDToLC, rate.LCToUSD
		if out.fullyPaid {
			loan.PaidAt = &now
		}
		if err := s.DB.Model(&loan).Select(debtPaymentColumns).Updates(&loan).Error; err != nil {
			return fmt.Errorf("update personal loan %d: %w", loan.ID, err)
		}

		if _, err := s.Ledger.Credit(out.alloc.Consumed, repository.Entry{
			Type:          paidType(out.fullyPaid, repository.TxPersonalPaymentFinal, repository.TxPersonalPaymentPartial),
			Description:   fmt.Sprintf("Repayment from %s", loan.PersonName),
			ReferenceID:   loan.ID,
			ReferenceType: "personal_loan",
		}); err != nil {
			return err
		}
		res = resultOf(loan.ID, out, rate)
		return nil
	})
	if err != nil {
		e.log.Warn().Err(err).Uint("loan_id", id).Msg("loan repayment failed")
		return nil, err
	}
	e.log.Info().
		Uint("loan_id", id).
		Str("paid", res.Paid.String()).
		Bool("fully_paid", res.FullyPaid).
		Msg("loan repayment recorded")
	return res, nil
}

// OutstandingCompanyDebt 汇总某供应商尚未结清的金额
func (e *Engine) OutstandingCompanyDebt(ctx context.Context, company string) (money.Amounts, error) {
	var total money.Amounts
	err := e.inTx(ctx, func(s *repository.Store) error {
		var debts []models.CompanyDebt
		if err := s.DB.Where("company_name = ? AND paid_at IS NULL", company).Find(&debts).Error; err != nil {
			return err
		}
		for i := range debts {
			left, err := e.remaining(s, e.companyAccount(&debts[i]))
			if err != nil {
				return err
			}
			total = total.Add(left)
		}
		return nil
	})
	return total, err
}
