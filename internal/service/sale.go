package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"phone-shop/internal/models"
	"phone-shop/internal/money"
	"phone-shop/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// 折扣类型
const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

var hundred = decimal.NewFromInt(100)

// DiscountInput 整单或供应商欠款折扣
type DiscountInput struct {
	Type  string          `json:"type"` // percentage / fixed
	Value decimal.Decimal `json:"value"`
}

func (d *DiscountInput) validate(field string) error {
	if d == nil {
		return nil
	}
	switch d.Type {
	case DiscountPercentage:
		if d.Value.IsNegative() || d.Value.GreaterThan(hundred) {
			return invalid(field+".value", d.Value, "percentage must be between 0 and 100")
		}
	case DiscountFixed:
		if d.Value.IsNegative() {
			return invalid(field+".value", d.Value, "must not be negative")
		}
	default:
		return invalid(field+".type", d.Type, "must be percentage or fixed")
	}
	return nil
}

// MultiCurrencyPayment 客户用两种币种支付的现金，给出 NetBalance 时以其为准
type MultiCurrencyPayment struct {
	USDAmount      decimal.Decimal  `json:"usd_amount"`
	LCAmount       decimal.Decimal  `json:"lc_amount"`
	NetBalanceUSD  *decimal.Decimal `json:"net_balance_usd,omitempty"`
	NetBalanceLC   *decimal.Decimal `json:"net_balance_lc,omitempty"`
	ChangeGivenUSD decimal.Decimal  `json:"change_given_usd"`
	ChangeGivenLC  decimal.Decimal  `json:"change_given_lc"`
}

// Net 找零后店里实收
func (p MultiCurrencyPayment) Net() money.Amounts {
	net := money.Amounts{
		USD: p.USDAmount.Sub(p.ChangeGivenUSD),
		LC:  p.LCAmount.Sub(p.ChangeGivenLC),
	}
	if p.NetBalanceUSD != nil {
		net.USD = *p.NetBalanceUSD
	}
	if p.NetBalanceLC != nil {
		net.LC = *p.NetBalanceLC
	}
	return net
}

// SaleItemInput 销售明细
type SaleItemInput struct {
	Ref             repository.CatalogRef `json:"ref"`
	Quantity        int                   `json:"quantity"`
	SellingPrice    decimal.Decimal       `json:"selling_price"`
	DiscountPercent decimal.Decimal       `json:"discount_percent"`
}

// SaleInput 下单参数，Total 为向客户收取的金额，按传入值使用
type SaleInput struct {
	Items         []SaleItemInput       `json:"items"`
	Total         decimal.Decimal       `json:"total"`
	Currency      money.Currency        `json:"currency"`
	IsDebt        bool                  `json:"is_debt"`
	CustomerName  string                `json:"customer_name"`
	Discount      *DiscountInput        `json:"discount,omitempty"`
	MultiCurrency *MultiCurrencyPayment `json:"multi_currency,omitempty"`
}

// SaleResult 下单结果
type SaleResult struct {
	Sale           models.Sale          `json:"sale"`
	Profit         decimal.Decimal      `json:"profit"`
	ProfitCurrency money.Currency       `json:"profit_currency"`
	Received       money.Amounts        `json:"received"`
	Debt           *models.CustomerDebt `json:"debt,omitempty"`
}

// discountSnapshot 存入 Sale.Discount 的折扣快照
type discountSnapshot struct {
	Discount      *DiscountInput        `json:"discount,omitempty"`
	MultiCurrency *MultiCurrencyPayment `json:"multi_currency,omitempty"`
}

func (in *SaleInput) validate() error {
	if len(in.Items) == 0 {
		return invalid("items", len(in.Items), "a sale needs at least one item")
	}
	if !in.Currency.IsTrading() {
		return invalid("currency", in.Currency, "must be USD or LC")
	}
	if !in.Total.IsPositive() {
		return invalid("total", in.Total, "must be positive")
	}
	for i, it := range in.Items {
		field := fmt.Sprintf("items[%d]", i)
		if !it.Ref.Valid() {
			return invalid(field+".ref", it.Ref, "must reference a product or accessory")
		}
		if it.Quantity <= 0 {
			return invalid(field+".quantity", it.Quantity, "must be positive")
		}
		if it.SellingPrice.IsNegative() {
			return invalid(field+".selling_price", it.SellingPrice, "must not be negative")
		}
		if it.DiscountPercent.IsNegative() || it.DiscountPercent.GreaterThan(hundred) {
			return invalid(field+".discount_percent", it.DiscountPercent, "must be between 0 and 100")
		}
	}
	if err := in.Discount.validate("discount"); err != nil {
		return err
	}
	if in.IsDebt {
		if strings.TrimSpace(in.CustomerName) == "" {
			return invalid("customer_name", in.CustomerName, "credit sales need a customer")
		}
		if in.MultiCurrency != nil {
			return invalid("multi_currency", "", "credit sales are paid through the customer debt")
		}
	}
	if mc := in.MultiCurrency; mc != nil {
		if mc.USDAmount.IsNegative() || mc.LCAmount.IsNegative() ||
			mc.ChangeGivenUSD.IsNegative() || mc.ChangeGivenLC.IsNegative() {
			return invalid("multi_currency", "", "amounts must not be negative")
		}
		net := mc.Net()
		if net.IsNegative() {
			return invalid("multi_currency", net.String(), "change exceeds the amount received")
		}
		if net.IsZero() {
			return invalid("multi_currency", net.String(), "nothing was received")
		}
	}
	return nil
}

// globalRatio 整单折扣分摊比例：总价除以折前合计，无折扣时为 1
func globalRatio(in *SaleInput) decimal.Decimal {
	one := decimal.NewFromInt(1)
	if in.Discount == nil {
		return one
	}
	sum := decimal.Zero
	for _, it := range in.Items {
		sum = sum.Add(it.SellingPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	if !sum.IsPositive() {
		return one
	}
	return in.Total.Div(sum)
}

func parseOr(s string, def money.Currency) money.Currency {
	c, err := money.ParseCurrency(s)
	if err != nil || !c.IsTrading() {
		return def
	}
	return c
}

// unitProfit 由明细的售价、进价、币种和汇率快照计算单件利润，结算和退货共用
func unitProfit(it *models.SaleItem, rate money.Rate) (money.Currency, decimal.Decimal, decimal.Decimal) {
	saleCur := parseOr(it.Currency, money.USD)
	profitCur := parseOr(it.ProfitCurrency, saleCur)
	itemCur := parseOr(it.ProductCurrency, money.USD)

	price := rate.Convert(it.Price, saleCur, profitCur)
	cost := rate.Convert(it.BuyingPrice, itemCur, profitCur)
	return profitCur, cost, price.Sub(cost)
}

// CommitSale 下单：扣库存、冻结汇率，然后入账现金和利润，或生成客户欠款
func (e *Engine) CommitSale(ctx context.Context, in SaleInput) (*SaleResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var res SaleResult
	err := e.inTx(ctx, func(s *repository.Store) error {
		rate, err := e.resolveRate(s, true)
		if err != nil {
			return err
		}

		// 同一商品的多行合并校验库存
		needed := make(map[repository.CatalogRef]int)
		catalog := make(map[repository.CatalogRef]repository.CatalogItem)
		for _, it := range in.Items {
			needed[it.Ref] += it.Quantity
			if _, ok := catalog[it.Ref]; ok {
				continue
			}
			item, err := s.Catalog.GetItem(it.Ref)
			if err != nil {
				return notFound(err, it.Ref.Kind, it.Ref.ID)
			}
			catalog[it.Ref] = item
		}
		for ref, qty := range needed {
			if item := catalog[ref]; item.Stock < qty {
				return &InsufficientStockError{Item: item.Name, Available: item.Stock, Required: qty}
			}
		}
		for ref, qty := range needed {
			if err := s.Catalog.DecrementStock(ref, qty); err != nil {
				if errors.Is(err, repository.ErrStockChanged) {
					item := catalog[ref]
					return &InsufficientStockError{Item: item.Name, Available: item.Stock, Required: qty}
				}
				return err
			}
		}

		profitCur := in.Currency
		if in.MultiCurrency != nil {
			profitCur = money.USD
		}
		ratio := globalRatio(&in)

		items := make([]models.SaleItem, 0, len(in.Items))
		totalProfit := decimal.Zero
		for _, it := range in.Items {
			item := catalog[it.Ref]
			productID, accessoryID := it.Ref.IDs()
			final := it.SellingPrice.
				Mul(hundred.Sub(it.DiscountPercent)).Div(hundred).
				Mul(ratio)

			line := models.SaleItem{
				ProductID:            productID,
				AccessoryID:          accessoryID,
				ItemKind:             it.Ref.Kind,
				Name:                 item.Name,
				Quantity:             it.Quantity,
				Price:                final,
				BuyingPrice:          item.UnitCost,
				Currency:             string(in.Currency),
				ProductCurrency:      string(parseOr(item.Currency, money.USD)),
				DiscountPercent:      it.DiscountPercent,
				OriginalSellingPrice: it.SellingPrice,
				ProfitCurrency:       string(profitCur),
			}
			_, cost, unit := unitProfit(&line, rate)
			line.BuyingPriceInSaleCurrency = cost
			line.ProfitInSaleCurrency = unit.Mul(decimal.NewFromInt(int64(it.Quantity)))
			totalProfit = totalProfit.Add(line.ProfitInSaleCurrency)
			items = append(items, line)
		}

		sale := models.Sale{
			CustomerName:        in.CustomerName,
			Total:               in.Total,
			Currency:            string(in.Currency),
			IsDebt:              in.IsDebt,
			IsMultiCurrency:     in.MultiCurrency != nil,
			ExchangeRateUSDToLC: rate.USDToLC,
			ExchangeRateLCToUSD: rate.LCToUSD,
		}
		var received money.Amounts
		switch {
		case in.IsDebt:
		case in.MultiCurrency != nil:
			received = in.MultiCurrency.Net()
		default:
			received = money.In(in.Currency, in.Total)
		}
		sale.PaidUSD, sale.PaidLC = received.USD, received.LC

		if in.Discount != nil || in.MultiCurrency != nil {
			raw, err := json.Marshal(discountSnapshot{Discount: in.Discount, MultiCurrency: in.MultiCurrency})
			if err != nil {
				return fmt.Errorf("encode discount: %w", err)
			}
			sale.Discount = datatypes.JSON(raw)
		}

		if err := s.DB.Omit("Items").Create(&sale).Error; err != nil {
			return fmt.Errorf("create sale: %w", err)
		}
		for i := range items {
			items[i].SaleID = sale.ID
		}
		if err := s.DB.Create(&items).Error; err != nil {
			return fmt.Errorf("create sale items: %w", err)
		}
		sale.Items = items

		if in.IsDebt {
			saleID := sale.ID
			debt := models.CustomerDebt{
				CustomerName: in.CustomerName,
				Amount:       in.Total,
				Currency:     string(in.Currency),
				SaleID:       &saleID,
				Description:  fmt.Sprintf("Credit sale #%d", sale.ID),
			}
			if err := s.DB.Create(&debt).Error; err != nil {
				return fmt.Errorf("create customer debt: %w", err)
			}
			res.Debt = &debt
		} else {
			if _, err := s.Ledger.Credit(received, repository.Entry{
				Type:          repository.TxSale,
				Description:   fmt.Sprintf("Sale #%d", sale.ID),
				ReferenceID:   sale.ID,
				ReferenceType: "sale",
			}); err != nil {
				return err
			}
			if err := s.Settings.AddProfit(profitCur, totalProfit); err != nil {
				return err
			}
		}

		res.Sale = sale
		res.Profit = totalProfit
		res.ProfitCurrency = profitCur
		res.Received = received
		return nil
	})
	if err != nil {
		e.log.Warn().Err(err).Msg("commit sale failed")
		return nil, err
	}

	e.log.Info().
		Uint("sale_id", res.Sale.ID).
		Str("total", res.Sale.Total.String()).
		Str("currency", res.Sale.Currency).
		Bool("credit", res.Sale.IsDebt).
		Str("profit", res.Profit.String()).
		Msg("sale committed")
	return &res, nil
}
