package service

import (
	"context"
	"fmt"
	"strings"

	"phone-shop/internal/models"
	"phone-shop/internal/money"
	"phone-shop/internal/repository"

	"github.com/shopspring/decimal"
)

// CustomerDebtInput 不经赊销直接登记的客户欠款
type CustomerDebtInput struct {
	CustomerName string          `json:"customer_name"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     money.Currency  `json:"currency"`
	Description  string          `json:"description"`
}

// CompanyDebtInput 欠供应商的款项。MULTI 使用 USDAmount 和 LCAmount，其余使用 Amount
type CompanyDebtInput struct {
	CompanyName string          `json:"company_name"`
	Description string          `json:"description"`
	Currency    money.Currency  `json:"currency"`
	Amount      decimal.Decimal `json:"amount"`
	USDAmount   decimal.Decimal `json:"usd_amount"`
	LCAmount    decimal.Decimal `json:"lc_amount"`
	Discount    *DiscountInput  `json:"discount,omitempty"`
}

// PersonalLoanInput 从店里借出的现金
type PersonalLoanInput struct {
	PersonName  string          `json:"person_name"`
	Description string          `json:"description"`
	USDAmount   decimal.Decimal `json:"usd_amount"`
	LCAmount    decimal.Decimal `json:"lc_amount"`
}

// CreateCustomerDebt 登记客户欠款，不产生现金变动
func (e *Engine) CreateCustomerDebt(ctx context.Context, in CustomerDebtInput) (*models.CustomerDebt, error) {
	if strings.TrimSpace(in.CustomerName) == "" {
		return nil, invalid("customer_name", in.CustomerName, "required")
	}
	if !in.Currency.IsTrading() {
		return nil, invalid("currency", in.Currency, "must be USD or LC")
	}
	if !in.Amount.IsPositive() {
		return nil, invalid("amount", in.Amount, "must be positive")
	}

	debt := models.CustomerDebt{
		CustomerName: in.CustomerName,
		Amount:       in.Amount,
		Currency:     string(in.Currency),
		Description:  in.Description,
	}
	err := e.inTx(ctx, func(s *repository.Store) error {
		return s.DB.Create(&debt).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create customer debt: %w", err)
	}
	e.log.Info().Uint("debt_id", debt.ID).Str("amount", debt.Amount.String()).Str("currency", debt.Currency).Msg("customer debt opened")
	return &debt, nil
}

// CreateCompanyDebt 登记供应商欠款，可带折扣
func (e *Engine) CreateCompanyDebt(ctx context.Context, in CompanyDebtInput) (*models.CompanyDebt, error) {
	if strings.TrimSpace(in.CompanyName) == "" {
		return nil, invalid("company_name", in.CompanyName, "required")
	}
	switch in.Currency {
	case money.USD, money.LC:
		if !in.Amount.IsPositive() {
			return nil, invalid("amount", in.Amount, "must be positive")
		}
	case money.MULTI:
		if in.USDAmount.IsNegative() || in.LCAmount.IsNegative() {
			return nil, invalid("amount", "", "usd_amount and lc_amount must not be negative")
		}
		if in.USDAmount.IsZero() && in.LCAmount.IsZero() {
			return nil, invalid("amount", "", "a MULTI debt needs usd_amount or lc_amount")
		}
	default:
		return nil, invalid("currency", in.Currency, "must be USD, LC or MULTI")
	}
	if err := in.Discount.validate("discount"); err != nil {
		return nil, err
	}

	var debt models.CompanyDebt
	err := e.inTx(ctx, func(s *repository.Store) error {
		rate, err := e.resolveRate(s, false)
		if err != nil {
			return err
		}
		debt = newCompanyDebt(in, rate)
		if in.Discount != nil && !debt.Amount.IsPositive() {
			return invalid("discount", in.Discount.Value.String(), "discount leaves nothing owed")
		}
		return s.DB.Create(&debt).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create company debt: %w", err)
	}
	e.log.Info().
		Uint("debt_id", debt.ID).
		Str("company", debt.CompanyName).
		Str("amount", debt.Amount.String()).
		Str("currency", debt.Currency).
		Msg("company debt recorded")
	return &debt, nil
}

// newCompanyDebt 构造欠款记录，MULTI 欠款的 Amount 为两部分按汇率折合的美元
func newCompanyDebt(in CompanyDebtInput, rate money.Rate) models.CompanyDebt {
	debt := models.CompanyDebt{
		CompanyName: in.CompanyName,
		Description: in.Description,
		Currency:    string(in.Currency),
	}

	if in.Currency == money.MULTI {
		parts := money.Amounts{USD: in.USDAmount, LC: in.LCAmount}
		debt.OriginalAmount = rate.Equivalent(parts, money.USD)
		if d := in.Discount; d != nil {
			var off decimal.Decimal
			if d.Type == DiscountPercentage {
				off = debt.OriginalAmount.Mul(d.Value).Div(hundred)
			} else {
				off = d.Value
			}
			parts = deductMulti(parts, off, rate)
			debt.DiscountType, debt.DiscountValue = d.Type, d.Value
		}
		debt.USDAmount, debt.LCAmount = parts.USD, parts.LC
		debt.Amount = rate.Equivalent(parts, money.USD)
		return debt
	}

	amount := in.Amount
	debt.OriginalAmount = amount
	if d := in.Discount; d != nil {
		if d.Type == DiscountPercentage {
			amount = amount.Sub(amount.Mul(d.Value).Div(hundred))
		} else {
			amount = amount.Sub(d.Value)
		}
		debt.DiscountType, debt.DiscountValue = d.Type, d.Value
	}
	debt.Amount = money.NonNegative(amount)
	if in.Currency == money.LC {
		debt.LCAmount = debt.Amount
	} else {
		debt.USDAmount = debt.Amount
	}
	return debt
}

// deductMulti 美元折扣先从美元部分扣，不够的按汇率从本币部分扣，两部分都不低于零
func deductMulti(parts money.Amounts, off decimal.Decimal, rate money.Rate) money.Amounts {
	fromUSD := money.Min(off, parts.USD)
	parts.USD = parts.USD.Sub(fromUSD)
	if rest := off.Sub(fromUSD); rest.IsPositive() {
		parts.LC = money.NonNegative(parts.LC.Sub(rate.ToLC(rest)))
	}
	return parts
}

// CreatePersonalLoan 登记个人借款并从余额中扣出借出的现金
func (e *Engine) CreatePersonalLoan(ctx context.Context, in PersonalLoanInput) (*models.PersonalLoan, error) {
	if strings.TrimSpace(in.PersonName) == "" {
		return nil, invalid("person_name", in.PersonName, "required")
	}
	lent := money.Amounts{USD: in.USDAmount, LC: in.LCAmount}
	if lent.IsNegative() {
		return nil, invalid("amount", lent.String(), "must not be negative")
	}
	if lent.IsZero() {
		return nil, invalid("amount", lent.String(), "a loan needs usd_amount or lc_amount")
	}

	loan := models.PersonalLoan{
		PersonName:  in.PersonName,
		Description: in.Description,
		USDAmount:   in.USDAmount,
		LCAmount:    in.LCAmount,
	}
	err := e.inTx(ctx, func(s *repository.Store) error {
		if err := s.DB.Create(&loan).Error; err != nil {
			return fmt.Errorf("create personal loan: %w", err)
		}
		_, err := s.Ledger.Debit(lent, repository.Entry{
			Type:          repository.TxPersonalLoan,
			Description:   fmt.Sprintf("Loan to %s", loan.PersonName),
			ReferenceID:   loan.ID,
			ReferenceType: "personal_loan",
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	e.log.Info().Uint("loan_id", loan.ID).Str("amount", lent.String()).Msg("personal loan recorded")
	return &loan, nil
}
