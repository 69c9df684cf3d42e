package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"phone-shop/internal/money"

	"github.com/shopspring/decimal"
)

// maxAmount 单笔金额上限（本币计价时数额较大）
var maxAmount = decimal.NewFromInt(10_000_000_000)

// ValidateAmount 验证金额（必须为正数且不超过上限）
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be positive, got %s", amount)
	}
	if amount.GreaterThanOrEqual(maxAmount) {
		return fmt.Errorf("amount too large, got %s", amount)
	}
	return nil
}

// ValidateRate 验证汇率（1 美元折合多少本币）
func ValidateRate(s string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid rate %q", s)
	}
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("rate must be positive, got %s", rate)
	}
	return rate, nil
}

// ValidateCurrency 验证币种，只接受 USD / LC（或别名 IQD）
func ValidateCurrency(s string) (money.Currency, error) {
	c, err := money.ParseCurrency(s)
	if err != nil {
		return "", err
	}
	if !c.IsTrading() {
		return "", fmt.Errorf("currency must be USD or LC, got %s", s)
	}
	return c, nil
}

// ValidateDate 验证日期格式（必须为 YYYY-MM-DD）
func ValidateDate(dateStr string) error {
	if dateStr == "" {
		return fmt.Errorf("date is empty")
	}
	_, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}
	return nil
}

// ValidateName 验证客户、公司等名称（不能为空且长度合理）
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name is empty")
	}
	if len([]rune(name)) > 128 {
		return fmt.Errorf("name too long, max 128 characters")
	}
	return nil
}

// ParseID 解析路径里的自增 ID
func ParseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(id), nil
}
