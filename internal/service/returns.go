package service

import (
	"context"
	"errors"
	"fmt"

	"phone-shop/internal/models"
	"phone-shop/internal/money"
	"phone-shop/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReturnSaleItemInput 退回某行的部分数量，Quantity 为 0 时整行退回，Refund 可覆盖计算出的退款
type ReturnSaleItemInput struct {
	SaleID   uint           `json:"sale_id"`
	ItemID   uint           `json:"item_id"`
	Quantity int            `json:"quantity"`
	Refund   *money.Amounts `json:"refund,omitempty"`
}

// ReturnResult 退货结果
type ReturnResult struct {
	SaleID         uint            `json:"sale_id"`
	Refund         money.Amounts   `json:"refund"`
	ProfitReversed money.Amounts   `json:"profit_reversed"`
	DebtReduced    money.Amounts   `json:"debt_reduced"`
	RestoredUnits  int             `json:"restored_units"`
	SaleDeleted    bool            `json:"sale_deleted"`
	RemainingTotal decimal.Decimal `json:"remaining_total"`
}

func (e *Engine) loadSale(s *repository.Store, id uint) (*models.Sale, money.Rate, error) {
	var sale models.Sale
	if err := s.DB.Preload("Items").First(&sale, id).Error; err != nil {
		return nil, money.Rate{}, notFound(err, "sale", id)
	}
	rate := money.RateFromSnapshot(sale.ExchangeRateUSDToLC, sale.ExchangeRateLCToUSD, e.defaultRate())
	return &sale, rate, nil
}

// saleDebt 返回赊销产生的客户欠款，没有则为 nil
func saleDebt(s *repository.Store, saleID uint) (*models.CustomerDebt, error) {
	var debt models.CustomerDebt
	err := s.DB.Where("sale_id = ?", saleID).First(&debt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load debt of sale %d: %w", saleID, err)
	}
	return &debt, nil
}

func restock(s *repository.Store, it *models.SaleItem, qty int) error {
	ref, ok := repository.RefFromIDs(it.ProductID, it.AccessoryID)
	if !ok {
		return nil
	}
	if err := s.Catalog.RestoreStock(ref, qty); err != nil {
		return notFound(err, ref.Kind, ref.ID)
	}
	return s.Catalog.ReactivateIfArchived(ref)
}

func deleteSale(s *repository.Store, sale *models.Sale, debt *models.CustomerDebt) error {
	if err := s.DB.Where("sale_id = ?", sale.ID).Delete(&models.SaleItem{}).Error; err != nil {
		return fmt.Errorf("delete items of sale %d: %w", sale.ID, err)
	}
	if debt != nil {
		if err := s.DB.Delete(debt).Error; err != nil {
			return fmt.Errorf("delete debt %d: %w", debt.ID, err)
		}
	}
	if err := s.DB.Delete(sale).Error; err != nil {
		return fmt.Errorf("delete sale %d: %w", sale.ID, err)
	}
	return nil
}

// ReturnSale 按下单时冻结的数据整单退货：恢复库存、退回实收、冲回已确认利润，
// 并删除销售单及其欠款
func (e *Engine) ReturnSale(ctx context.Context, saleID uint) (*ReturnResult, error) {
	res := ReturnResult{SaleID: saleID, SaleDeleted: true}
	err := e.inTx(ctx, func(s *repository.Store) error {
		sale, rate, err := e.loadSale(s, saleID)
		if err != nil {
			return err
		}
		debt, err := saleDebt(s, sale.ID)
		if err != nil {
			return err
		}

		for i := range sale.Items {
			it := &sale.Items[i]
			if err := restock(s, it, it.Quantity); err != nil {
				return err
			}
			res.RestoredUnits += it.Quantity
		}

		realized := !sale.IsDebt
		switch {
		case !sale.IsDebt:
			res.Refund = money.Amounts{USD: sale.PaidUSD, LC: sale.PaidLC}
		case debt != nil:
			res.Refund = money.Amounts{USD: debt.PaymentUSDAmount, LC: debt.PaymentLCAmount}
			realized = debt.PaidAt != nil
		}
		if _, err := s.Ledger.Debit(res.Refund, repository.Entry{
			Type:          repository.TxSaleReturn,
			Description:   fmt.Sprintf("Return of sale #%d", sale.ID),
			ReferenceID:   sale.ID,
			ReferenceType: "sale",
		}); err != nil {
			return err
		}

		if realized {
			for i := range sale.Items {
				it := &sale.Items[i]
				cur, _, unit := unitProfit(it, rate)
				profit := unit.Mul(decimal.NewFromInt(int64(it.Quantity)))
				if err := s.Settings.AddProfit(cur, profit.Neg()); err != nil {
					return err
				}
				res.ProfitReversed = res.ProfitReversed.Add(money.In(cur, profit))
			}
		}

		return deleteSale(s, sale, debt)
	})
	if err != nil {
		e.log.Warn().Err(err).Uint("sale_id", saleID).Msg("sale return failed")
		return nil, err
	}
	e.log.Info().
		Uint("sale_id", saleID).
		Str("refund", res.Refund.String()).
		Int("units", res.RestoredUnits).
		Msg("sale returned")
	return &res, nil
}

// ReturnSaleItem 按行退货。未结清的赊销只减少欠款，已付超出新欠额的部分退回；
// 其余情况直接退现金
func (e *Engine) ReturnSaleItem(ctx context.Context, in ReturnSaleItemInput) (*ReturnResult, error) {
	if in.Quantity < 0 {
		return nil, invalid("quantity", in.Quantity, "must not be negative")
	}
	if in.Refund != nil && in.Refund.IsNegative() {
		return nil, invalid("refund", in.Refund.String(), "must not be negative")
	}

	res := ReturnResult{SaleID: in.SaleID}
	err := e.inTx(ctx, func(s *repository.Store) error {
		sale, rate, err := e.loadSale(s, in.SaleID)
		if err != nil {
			return err
		}
		var item *models.SaleItem
		for i := range sale.Items {
			if sale.Items[i].ID == in.ItemID {
				item = &sale.Items[i]
				break
			}
		}
		if item == nil {
			return &NotFoundError{Entity: "sale item", ID: in.ItemID}
		}
		qty := in.Quantity
		if qty == 0 {
			qty = item.Quantity
		}
		if qty > item.Quantity {
			return invalid("quantity", qty, fmt.Sprintf("line only has %d units", item.Quantity))
		}

		debt, err := saleDebt(s, sale.ID)
		if err != nil {
			return err
		}
		saleCur := parseOr(sale.Currency, money.USD)
		returnValue := item.Price.Mul(decimal.NewFromInt(int64(qty)))

		if err := restock(s, item, qty); err != nil {
			return err
		}
		res.RestoredUnits = qty

		debtClosed := false
		lastUnits := qty == item.Quantity && len(sale.Items) == 1
		if sale.IsDebt && debt != nil && debt.PaidAt == nil {
			debtCur := parseOr(debt.Currency, money.USD)
			if lastUnits {
				// 欠款随销售单删除，已收的钱全部退回
				res.DebtReduced = money.In(debtCur, money.Min(returnValue, debt.Amount))
				res.Refund = money.Amounts{USD: debt.PaymentUSDAmount, LC: debt.PaymentLCAmount}
			} else if debtClosed, err = e.shrinkOpenDebt(s, debt, returnValue, &res); err != nil {
				return err
			}
			if _, err := s.Ledger.Debit(res.Refund, repository.Entry{
				Type:          repository.TxSaleItemReturn,
				Description:   fmt.Sprintf("Return of %d x %s from credit sale #%d", qty, item.Name, sale.ID),
				ReferenceID:   sale.ID,
				ReferenceType: "sale",
			}); err != nil {
				return err
			}
		} else {
			paid := money.Amounts{USD: sale.PaidUSD, LC: sale.PaidLC}
			switch {
			case in.Refund != nil:
				res.Refund = *in.Refund
			case sale.IsMultiCurrency && sale.Total.IsPositive():
				res.Refund = paid.Scale(returnValue.Div(sale.Total))
			default:
				res.Refund = money.In(saleCur, returnValue)
			}
			if _, err := s.Ledger.Debit(res.Refund, repository.Entry{
				Type:          repository.TxSaleItemReturn,
				Description:   fmt.Sprintf("Return of %d x %s from sale #%d", qty, item.Name, sale.ID),
				ReferenceID:   sale.ID,
				ReferenceType: "sale",
			}); err != nil {
				return err
			}

			cur, _, unit := unitProfit(item, rate)
			profit := unit.Mul(decimal.NewFromInt(int64(qty)))
			if err := s.Settings.AddProfit(cur, profit.Neg()); err != nil {
				return err
			}
			res.ProfitReversed = money.In(cur, profit)

			paid = paid.Sub(res.Refund).ClampZero()
			sale.PaidUSD, sale.PaidLC = paid.USD, paid.LC
			if debt != nil {
				received := money.Amounts{USD: debt.PaymentUSDAmount, LC: debt.PaymentLCAmount}.Sub(res.Refund).ClampZero()
				debt.PaymentUSDAmount, debt.PaymentLCAmount = received.USD, received.LC
				if err := s.DB.Model(debt).Select("payment_usd_amount", "payment_lc_amount", "updated_at").Updates(debt).Error; err != nil {
					return fmt.Errorf("update debt %d: %w", debt.ID, err)
				}
			}
		}

		remainingLines := len(sale.Items)
		if qty == item.Quantity {
			if err := s.DB.Delete(item).Error; err != nil {
				return fmt.Errorf("delete sale item %d: %w", item.ID, err)
			}
			remainingLines--
		} else {
			item.Quantity -= qty
			_, _, unit := unitProfit(item, rate)
			item.ProfitInSaleCurrency = unit.Mul(decimal.NewFromInt(int64(item.Quantity)))
			if err := s.DB.Model(item).Select("quantity", "profit_in_sale_currency").Updates(item).Error; err != nil {
				return fmt.Errorf("update sale item %d: %w", item.ID, err)
			}
		}

		if remainingLines == 0 {
			res.SaleDeleted = true
			return deleteSale(s, sale, debt)
		}
		sale.Total = money.NonNegative(sale.Total.Sub(returnValue))
		res.RemainingTotal = sale.Total
		if err := s.DB.Model(sale).Select("total", "paid_usd", "paid_lc", "updated_at").Updates(sale).Error; err != nil {
			return fmt.Errorf("update sale %d: %w", sale.ID, err)
		}
		if debtClosed {
			return e.settleCreditSale(s, debt)
		}
		return nil
	})
	if err != nil {
		e.log.Warn().Err(err).Uint("sale_id", in.SaleID).Uint("item_id", in.ItemID).Msg("sale item return failed")
		return nil, err
	}
	e.log.Info().
		Uint("sale_id", in.SaleID).
		Uint("item_id", in.ItemID).
		Int("units", res.RestoredUnits).
		Str("refund", res.Refund.String()).
		Msg("sale item returned")
	return &res, nil
}

// shrinkOpenDebt 从未结清的赊销欠款中扣除退货金额，返回是否因此结清。
// 已付超出新欠额的部分按原收款币种比例放入 res.Refund
func (e *Engine) shrinkOpenDebt(s *repository.Store, debt *models.CustomerDebt, value decimal.Decimal, res *ReturnResult) (bool, error) {
	debtCur := parseOr(debt.Currency, money.USD)
	reduced := money.Min(value, debt.Amount)
	debt.Amount = money.NonNegative(debt.Amount.Sub(value))
	res.DebtReduced = money.In(debtCur, reduced)

	acct := debtAccount{
		kind:      models.DebtCustomer,
		id:        debt.ID,
		principal: money.In(debtCur, debt.Amount),
		tolerance: e.opts.CustomerTolerance,
	}
	cols := []string{"amount", "updated_at"}

	covered, err := e.applied(s, acct)
	if err != nil {
		return false, err
	}
	if paidValue := covered.Get(debtCur); paidValue.GreaterThan(debt.Amount) {
		received := money.Amounts{USD: debt.PaymentUSDAmount, LC: debt.PaymentLCAmount}
		res.Refund = received.Scale(paidValue.Sub(debt.Amount).Div(paidValue))
		kept := received.Sub(res.Refund).ClampZero()
		debt.PaymentUSDAmount, debt.PaymentLCAmount = kept.USD, kept.LC
		cols = append(cols, "payment_usd_amount", "payment_lc_amount")
	}

	left, err := e.remaining(s, acct)
	if err != nil {
		return false, err
	}
	closed := debt.Amount.IsZero() || acct.tolerance.Covers(left)
	if closed {
		now := e.now()
		debt.PaidAt = &now
		cols = append(cols, "paid_at")
	}
	if err := s.DB.Model(debt).Select(cols).Updates(debt).Error; err != nil {
		return false, fmt.Errorf("update debt %d: %w", debt.ID, err)
	}
	e.log.Info().
		Uint("debt_id", debt.ID).
		Str("amount", debt.Amount.String()).
		Str("refund", res.Refund.String()).
		Bool("closed", closed).
		Msg("credit sale debt reduced")
	return closed, nil
}
