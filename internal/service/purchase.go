package service

import (
	"context"
	"errors"
	"fmt"

	"phone-shop/internal/models"
	"phone-shop/internal/money"
	"phone-shop/internal/repository"

	"github.com/shopspring/decimal"
)

// PurchaseItemInput 进货明细，UnitPrice 为进货币种（MULTI 时为美元）
type PurchaseItemInput struct {
	Ref       repository.CatalogRef `json:"ref"`
	Quantity  int                   `json:"quantity"`
	UnitPrice decimal.Decimal       `json:"unit_price"`
}

// PurchaseInput 从供应商进货，MULTI 进货须给出两种币种各付多少
type PurchaseInput struct {
	CompanyName string              `json:"company_name"`
	Currency    money.Currency      `json:"currency"`
	Items       []PurchaseItemInput `json:"items"`
	Payment     *money.Amounts      `json:"payment,omitempty"`
}

// ReturnPurchaseItemInput 退回某条进货明细，Quantity 为 0 时整行退回
type ReturnPurchaseItemInput struct {
	EntryID  uint `json:"entry_id"`
	ItemID   uint `json:"item_id"`
	Quantity int  `json:"quantity"`
}

// PurchaseReturnResult 进货退货结果
type PurchaseReturnResult struct {
	EntryID      uint          `json:"entry_id"`
	Refund       money.Amounts `json:"refund"`
	RemovedUnits int           `json:"removed_units"`
	EntryDeleted bool          `json:"entry_deleted"`
}

func (in *PurchaseInput) validate() error {
	switch in.Currency {
	case money.USD, money.LC:
	case money.MULTI:
		if in.Payment == nil {
			return invalid("payment", nil, "MULTI purchases need the split paid")
		}
		if in.Payment.IsNegative() || in.Payment.IsZero() {
			return invalid("payment", in.Payment.String(), "must be positive")
		}
	default:
		return invalid("currency", in.Currency, "must be USD, LC or MULTI")
	}
	if len(in.Items) == 0 {
		return invalid("items", 0, "a purchase needs at least one item")
	}
	for i, it := range in.Items {
		field := fmt.Sprintf("items[%d]", i)
		if !it.Ref.Valid() {
			return invalid(field+".ref", it.Ref, "must reference a product or accessory")
		}
		if it.Quantity <= 0 {
			return invalid(field+".quantity", it.Quantity, "must be positive")
		}
		if it.UnitPrice.IsNegative() {
			return invalid(field+".unit_price", it.UnitPrice, "must not be negative")
		}
	}
	return nil
}

// entrySplit 进货时从余额付出的现金
func entrySplit(entry *models.BuyingHistory) money.Amounts {
	if entry.Currency == string(money.MULTI) {
		return money.Amounts{USD: entry.MultiCurrencyUSD, LC: entry.MultiCurrencyLC}
	}
	return money.In(parseOr(entry.Currency, money.USD), entry.TotalPrice)
}

// RecordPurchase 入库并从余额付款
func (e *Engine) RecordPurchase(ctx context.Context, in PurchaseInput) (*models.BuyingHistory, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var entry models.BuyingHistory
	err := e.inTx(ctx, func(s *repository.Store) error {
		rate, err := e.resolveRate(s, true)
		if err != nil {
			return err
		}

		items := make([]models.BuyingHistoryItem, 0, len(in.Items))
		total := decimal.Zero
		for _, it := range in.Items {
			item, err := s.Catalog.GetItem(it.Ref)
			if err != nil {
				return notFound(err, it.Ref.Kind, it.Ref.ID)
			}
			if err := s.Catalog.RestoreStock(it.Ref, it.Quantity); err != nil {
				return err
			}
			if err := s.Catalog.ReactivateIfArchived(it.Ref); err != nil {
				return err
			}
			productID, accessoryID := it.Ref.IDs()
			line := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
			total = total.Add(line)
			items = append(items, models.BuyingHistoryItem{
				ProductID:   productID,
				AccessoryID: accessoryID,
				ItemKind:    it.Ref.Kind,
				Name:        item.Name,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
				TotalPrice:  line,
			})
		}

		entry = models.BuyingHistory{
			CompanyName:         in.CompanyName,
			TotalPrice:          total,
			Currency:            string(in.Currency),
			ExchangeRateUSDToLC: rate.USDToLC,
			ExchangeRateLCToUSD: rate.LCToUSD,
		}
		if in.Currency == money.MULTI {
			entry.MultiCurrencyUSD, entry.MultiCurrencyLC = in.Payment.USD, in.Payment.LC
		}
		if err := s.DB.Omit("Items").Create(&entry).Error; err != nil {
			return fmt.Errorf("create purchase: %w", err)
		}
		for i := range items {
			items[i].BuyingHistoryID = entry.ID
		}
		if err := s.DB.Create(&items).Error; err != nil {
			return fmt.Errorf("create purchase items: %w", err)
		}
		entry.Items = items

		_, err = s.Ledger.Debit(entrySplit(&entry), repository.Entry{
			Type:          repository.TxPurchase,
			Description:   fmt.Sprintf("Purchase #%d from %s", entry.ID, entry.CompanyName),
			ReferenceID:   entry.ID,
			ReferenceType: "buying_history",
		})
		return err
	})
	if err != nil {
		e.log.Warn().Err(err).Str("company", in.CompanyName).Msg("purchase failed")
		return nil, err
	}
	e.log.Info().
		Uint("entry_id", entry.ID).
		Str("total", entry.TotalPrice.String()).
		Str("currency", entry.Currency).
		Msg("purchase recorded")
	return &entry, nil
}

func (e *Engine) loadPurchase(s *repository.Store, id uint) (*models.BuyingHistory, error) {
	var entry models.BuyingHistory
	if err := s.DB.Preload("Items").First(&entry, id).Error; err != nil {
		return nil, notFound(err, "purchase", id)
	}
	return &entry, nil
}

// unstock 退货时扣减库存
func unstock(s *repository.Store, it *models.BuyingHistoryItem, qty int) error {
	ref, ok := repository.RefFromIDs(it.ProductID, it.AccessoryID)
	if !ok {
		return nil
	}
	item, err := s.Catalog.GetItem(ref)
	if err != nil {
		return notFound(err, ref.Kind, ref.ID)
	}
	if item.Stock < qty {
		return &InsufficientStockError{Item: item.Name, Available: item.Stock, Required: qty}
	}
	if err := s.Catalog.DecrementStock(ref, qty); err != nil {
		if errors.Is(err, repository.ErrStockChanged) {
			return &InsufficientStockError{Item: item.Name, Available: item.Stock, Required: qty}
		}
		return err
	}
	return nil
}

// ReturnBuyingHistoryEntry 整单退货并退回已付款
func (e *Engine) ReturnBuyingHistoryEntry(ctx context.Context, entryID uint) (*PurchaseReturnResult, error) {
	res := PurchaseReturnResult{EntryID: entryID, EntryDeleted: true}
	err := e.inTx(ctx, func(s *repository.Store) error {
		entry, err := e.loadPurchase(s, entryID)
		if err != nil {
			return err
		}
		for i := range entry.Items {
			it := &entry.Items[i]
			if err := unstock(s, it, it.Quantity); err != nil {
				return err
			}
			res.RemovedUnits += it.Quantity
		}

		res.Refund = entrySplit(entry)
		if _, err := s.Ledger.Credit(res.Refund, repository.Entry{
			Type:          repository.TxPurchaseReturn,
			Description:   fmt.Sprintf("Return of purchase #%d to %s", entry.ID, entry.CompanyName),
			ReferenceID:   entry.ID,
			ReferenceType: "buying_history",
		}); err != nil {
			return err
		}

		if err := s.DB.Where("buying_history_id = ?", entry.ID).Delete(&models.BuyingHistoryItem{}).Error; err != nil {
			return fmt.Errorf("delete purchase items: %w", err)
		}
		if err := s.DB.Delete(entry).Error; err != nil {
			return fmt.Errorf("delete purchase %d: %w", entry.ID, err)
		}
		return nil
	})
	if err != nil {
		e.log.Warn().Err(err).Uint("entry_id", entryID).Msg("purchase return failed")
		return nil, err
	}
	e.log.Info().Uint("entry_id", entryID).Str("refund", res.Refund.String()).Msg("purchase returned")
	return &res, nil
}

// ReturnBuyingHistoryItem 按明细退货，退款为该行在整单付款中的占比
func (e *Engine) ReturnBuyingHistoryItem(ctx context.Context, in ReturnPurchaseItemInput) (*PurchaseReturnResult, error) {
	if in.Quantity < 0 {
		return nil, invalid("quantity", in.Quantity, "must not be negative")
	}

	res := PurchaseReturnResult{EntryID: in.EntryID}
	err := e.inTx(ctx, func(s *repository.Store) error {
		entry, err := e.loadPurchase(s, in.EntryID)
		if err != nil {
			return err
		}
		var item *models.BuyingHistoryItem
		for i := range entry.Items {
			if entry.Items[i].ID == in.ItemID {
				item = &entry.Items[i]
				break
			}
		}
		if item == nil {
			return &NotFoundError{Entity: "purchase item", ID: in.ItemID}
		}
		qty := in.Quantity
		if qty == 0 {
			qty = item.Quantity
		}
		if qty > item.Quantity {
			return invalid("quantity", qty, fmt.Sprintf("line only has %d units", item.Quantity))
		}

		if err := unstock(s, item, qty); err != nil {
			return err
		}
		res.RemovedUnits = qty

		itemValue := item.UnitPrice.Mul(decimal.NewFromInt(int64(qty)))
		split := entrySplit(entry)
		if entry.Currency == string(money.MULTI) {
			if entry.TotalPrice.IsPositive() {
				res.Refund = split.Scale(itemValue.Div(entry.TotalPrice))
			}
		} else {
			res.Refund = money.In(parseOr(entry.Currency, money.USD), itemValue)
		}
		if _, err := s.Ledger.Credit(res.Refund, repository.Entry{
			Type:          repository.TxPurchaseItemReturn,
			Description:   fmt.Sprintf("Return of %d x %s from purchase #%d", qty, item.Name, entry.ID),
			ReferenceID:   entry.ID,
			ReferenceType: "buying_history",
		}); err != nil {
			return err
		}

		remainingLines := len(entry.Items)
		if qty == item.Quantity {
			if err := s.DB.Delete(item).Error; err != nil {
				return fmt.Errorf("delete purchase item %d: %w", item.ID, err)
			}
			remainingLines--
		} else {
			item.Quantity -= qty
			item.TotalPrice = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
			if err := s.DB.Model(item).Select("quantity", "total_price").Updates(item).Error; err != nil {
				return fmt.Errorf("update purchase item %d: %w", item.ID, err)
			}
		}

		if remainingLines == 0 {
			res.EntryDeleted = true
			if err := s.DB.Delete(entry).Error; err != nil {
				return fmt.Errorf("delete purchase %d: %w", entry.ID, err)
			}
			return nil
		}
		entry.TotalPrice = money.NonNegative(entry.TotalPrice.Sub(itemValue))
		if entry.Currency == string(money.MULTI) {
			left := split.Sub(res.Refund).ClampZero()
			entry.MultiCurrencyUSD, entry.MultiCurrencyLC = left.USD, left.LC
		}
		if err := s.DB.Model(entry).
			Select("total_price", "multi_currency_usd", "multi_currency_lc", "updated_at").
			Updates(entry).Error; err != nil {
			return fmt.Errorf("update purchase %d: %w", entry.ID, err)
		}
		return nil
	})
	if err != nil {
		e.log.Warn().Err(err).Uint("entry_id", in.EntryID).Uint("item_id", in.ItemID).Msg("purchase item return failed")
		return nil, err
	}
	e.log.Info().
		Uint("entry_id", in.EntryID).
		Uint("item_id", in.ItemID).
		Int("units", res.RemovedUnits).
		Str("refund", res.Refund.String()).
		Msg("purchase item returned")
	return &res, nil
}
