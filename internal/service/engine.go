// Package service 结算引擎：销售、还款、退货与进货。
// 每个导出操作都在一个数据库事务内完成，任一步出错整体回滚。
package service

import (
	"context"
	"time"

	"phone-shop/internal/config"
	"phone-shop/internal/logger"
	"phone-shop/internal/money"
	"phone-shop/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Options 引擎参数
type Options struct {
	// 未保存汇率时每美元对应的本币
	DefaultRate       decimal.Decimal
	CustomerTolerance money.Tolerance
	CompanyTolerance  money.Tolerance
	LoanTolerance     money.Tolerance
	Now               func() time.Time
}

// DefaultOptions 默认汇率 1440，容差取默认值
func DefaultOptions() Options {
	return Options{
		DefaultRate:       decimal.NewFromInt(1440),
		CustomerTolerance: money.CustomerTolerance,
		CompanyTolerance:  money.CompanyTolerance,
		LoanTolerance:     money.LoanTolerance,
		Now:               time.Now,
	}
}

// OptionsFromConfig 从配置的 ledger 段构造参数
func OptionsFromConfig(cfg config.LedgerConfig) Options {
	opts := DefaultOptions()
	if cfg.DefaultRate > 0 {
		opts.DefaultRate = cfg.DefaultRateDecimal()
	}
	opts.CustomerTolerance, opts.CompanyTolerance, opts.LoanTolerance = cfg.Tolerances()
	return opts
}

// Engine 在一个数据库上执行结算操作
type Engine struct {
	db   *gorm.DB
	opts Options
	log  zerolog.Logger
}

// NewEngine 创建引擎
func NewEngine(db *gorm.DB, opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if !opts.DefaultRate.IsPositive() {
		opts.DefaultRate = decimal.NewFromInt(1440)
	}
	return &Engine{db: db, opts: opts, log: logger.WithComponent("engine")}
}

// inTx 在单个事务内执行 fn，所有仓储都绑定到该事务
func (e *Engine) inTx(ctx context.Context, fn func(s *repository.Store) error) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(repository.New(tx))
	})
}

func (e *Engine) now() time.Time {
	return e.opts.Now()
}

func (e *Engine) defaultRate() money.Rate {
	r, _ := money.NewRate(e.opts.DefaultRate)
	return r
}
