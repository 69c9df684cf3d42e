package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 引擎返回的错误类别，出错时整个操作已回滚
var (
	// 参数不合法
	ErrValidation = errors.New("validation failed")

	// 商品、销售单、欠款、借款或进货记录不存在
	ErrNotFound = errors.New("not found")

	// 库存不足
	ErrInsufficientStock = errors.New("insufficient stock")

	// 个人借款还款超出欠额
	ErrOverpayment = errors.New("payment exceeds remaining balance")
)

// ValidationError 被拒绝的输入字段
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// NotFoundError 记录不存在
type NotFoundError struct {
	Entity string
	ID     interface{}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InsufficientStockError 附带现有与所需数量
type InsufficientStockError struct {
	Item      string
	Available int
	Required  int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %d, required %d", e.Item, e.Available, e.Required)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// OverpaymentError 还款额与剩余欠额，均按还款时汇率折合美元
type OverpaymentError struct {
	Requested decimal.Decimal
	Remaining decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment of %s USD exceeds remaining %s USD", e.Requested.StringFixed(2), e.Remaining.StringFixed(2))
}

func (e *OverpaymentError) Is(target error) bool { return target == ErrOverpayment }

// notFound 把 gorm.ErrRecordNotFound 转成 NotFoundError，其他错误原样包装
func notFound(err error, entity string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return fmt.Errorf("load %s %v: %w", entity, id, err)
}
