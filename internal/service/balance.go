package service

import (
	"context"
	"strings"

	"phone-shop/internal/models"
	"phone-shop/internal/money"
	"phone-shop/internal/repository"
)

// Snapshot 店铺现金余额与累计利润
type Snapshot struct {
	Balance money.Amounts `json:"balance"`
	Profit  money.Amounts `json:"profit"`
}

// Balance 返回当前余额和利润计数
func (e *Engine) Balance(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot
	err := e.inTx(ctx, func(s *repository.Store) error {
		var err error
		if snap.Balance, err = s.Ledger.Balance(); err != nil {
			return err
		}
		if snap.Profit.USD, err = s.Settings.GetCounter(repository.ProfitUSD); err != nil {
			return err
		}
		snap.Profit.LC, err = s.Settings.GetCounter(repository.ProfitLC)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// AdjustBalance 记录不属于销售、欠款或进货的现金变动（如期初现金、盘点差额）
func (e *Engine) AdjustBalance(ctx context.Context, delta money.Amounts, note string) (*models.TransactionLogEntry, error) {
	if delta.IsZero() {
		return nil, invalid("delta", delta.String(), "must not be zero")
	}
	if strings.TrimSpace(note) == "" {
		note = "Manual adjustment"
	}

	var entry *models.TransactionLogEntry
	err := e.inTx(ctx, func(s *repository.Store) error {
		var err error
		entry, err = s.Ledger.Credit(delta, repository.Entry{
			Type:          repository.TxManualAdjustment,
			Description:   note,
			ReferenceType: "balance",
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	e.log.Info().Str("delta", delta.String()).Str("note", note).Msg("balance adjusted")
	return entry, nil
}

// Transactions 按时间倒序列出资金流水
func (e *Engine) Transactions(ctx context.Context, f repository.ListFilter) ([]models.TransactionLogEntry, int64, error) {
	var (
		rows  []models.TransactionLogEntry
		total int64
	)
	err := e.inTx(ctx, func(s *repository.Store) error {
		var err error
		rows, total, err = s.Ledger.Entries(f)
		return err
	})
	return rows, total, err
}

// Reconcile 比对余额与流水的带符号合计，差额不为零说明有绕过账本的写入
func (e *Engine) Reconcile(ctx context.Context) (drift money.Amounts, err error) {
	err = e.inTx(ctx, func(s *repository.Store) error {
		bal, err := s.Ledger.Balance()
		if err != nil {
			return err
		}
		sum, err := s.Ledger.LogSum()
		if err != nil {
			return err
		}
		drift = bal.Sub(sum)
		return nil
	})
	return drift, err
}
