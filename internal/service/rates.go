package service

import (
	"context"

	"phone-shop/internal/money"
	"phone-shop/internal/repository"

	"github.com/shopspring/decimal"
)

// GetRate 返回 1 单位 from 可兑换的 to 数量。缺汇率时不报错：
// 优先直接汇率，其次反向汇率取倒数，最后用默认汇率
func (e *Engine) GetRate(ctx context.Context, from, to money.Currency) (decimal.Decimal, error) {
	if !from.IsTrading() {
		return decimal.Zero, invalid("from", from, "unsupported currency")
	}
	if !to.IsTrading() {
		return decimal.Zero, invalid("to", to, "unsupported currency")
	}
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	var rate decimal.Decimal
	err := e.inTx(ctx, func(s *repository.Store) error {
		var err error
		rate, err = e.lookupRate(s, from, to)
		return err
	})
	return rate, err
}

// SetRate 同时保存正反两个方向的汇率
func (e *Engine) SetRate(ctx context.Context, from, to money.Currency, rate decimal.Decimal) error {
	if !from.IsTrading() || !to.IsTrading() || from == to {
		return invalid("pair", string(from)+"->"+string(to), "rate needs two different trading currencies")
	}
	if !rate.IsPositive() {
		return invalid("rate", rate, "must be positive")
	}
	err := e.inTx(ctx, func(s *repository.Store) error {
		return s.Rates.Set(from, to, rate)
	})
	if err != nil {
		return err
	}
	e.log.Info().Str("from", string(from)).Str("to", string(to)).Str("rate", rate.String()).Msg("exchange rate updated")
	return nil
}

// CurrentRate 返回当前 USD/LC 汇率快照，不写库
func (e *Engine) CurrentRate(ctx context.Context) (money.Rate, error) {
	var rate money.Rate
	err := e.inTx(ctx, func(s *repository.Store) error {
		var err error
		rate, err = e.resolveRate(s, false)
		return err
	})
	return rate, err
}

func (e *Engine) lookupRate(s *repository.Store, from, to money.Currency) (decimal.Decimal, error) {
	direct, ok, err := s.Rates.Get(from, to)
	if err != nil {
		return decimal.Zero, err
	}
	if ok {
		return direct, nil
	}
	reverse, ok, err := s.Rates.Get(to, from)
	if err != nil {
		return decimal.Zero, err
	}
	if ok {
		return decimal.NewFromInt(1).Div(reverse), nil
	}
	def := e.defaultRate()
	if from == money.USD {
		return def.USDToLC, nil
	}
	return def.LCToUSD, nil
}

// resolveRate 生成本次操作使用的汇率快照；persistDefault 时未配置的库会写入默认汇率
func (e *Engine) resolveRate(s *repository.Store, persistDefault bool) (money.Rate, error) {
	usdToLC, okDirect, err := s.Rates.Get(money.USD, money.LC)
	if err != nil {
		return money.Rate{}, err
	}
	lcToUSD, okReverse, err := s.Rates.Get(money.LC, money.USD)
	if err != nil {
		return money.Rate{}, err
	}

	switch {
	case okDirect && okReverse:
		return money.Rate{USDToLC: usdToLC, LCToUSD: lcToUSD}, nil
	case okDirect:
		return money.NewRate(usdToLC)
	case okReverse:
		return money.NewRate(decimal.NewFromInt(1).Div(lcToUSD))
	}

	def := e.defaultRate()
	if persistDefault {
		if err := s.Rates.Set(money.USD, money.LC, def.USDToLC); err != nil {
			return money.Rate{}, err
		}
		e.log.Warn().Str("rate", def.USDToLC.String()).Msg("no exchange rate configured, stored default")
	}
	return def, nil
}
