package util

import (
	"strings"
	"testing"

	"phone-shop/internal/money"

	"github.com/shopspring/decimal"
)

// TestValidateAmount_Positive 测试正数金额
func TestValidateAmount_Positive(t *testing.T) {
	testCases := []string{"0.01", "1", "100.5", "1440000", "9999999999.99"}

	for _, s := range testCases {
		err := ValidateAmount(decimal.RequireFromString(s))
		if err != nil {
			t.Errorf("ValidateAmount(%s) error = %v, want nil", s, err)
		}
	}
}

// TestValidateAmount_NotPositive 测试零和负数金额（异常）
func TestValidateAmount_NotPositive(t *testing.T) {
	testCases := []string{"0", "-0.01", "-100"}

	for _, s := range testCases {
		err := ValidateAmount(decimal.RequireFromString(s))
		if err == nil {
			t.Errorf("ValidateAmount(%s) error = nil, want error", s)
		}
	}
}

// TestValidateAmount_TooLarge 测试金额过大（异常）
func TestValidateAmount_TooLarge(t *testing.T) {
	err := ValidateAmount(decimal.NewFromInt(10_000_000_000))

	if err == nil {
		t.Error("ValidateAmount(10000000000) error = nil, want error")
	}
}

func TestValidateRate(t *testing.T) {
	rate, err := ValidateRate(" 1440 ")
	if err != nil {
		t.Fatalf("ValidateRate(1440) error = %v", err)
	}
	if !rate.Equal(decimal.NewFromInt(1440)) {
		t.Errorf("rate = %s, want 1440", rate)
	}

	for _, s := range []string{"", "abc", "0", "-5"} {
		if _, err := ValidateRate(s); err == nil {
			t.Errorf("ValidateRate(%q) error = nil, want error", s)
		}
	}
}

func TestValidateCurrency(t *testing.T) {
	testCases := map[string]money.Currency{
		"USD": money.USD,
		"usd": money.USD,
		"LC":  money.LC,
		"iqd": money.LC,
	}
	for in, want := range testCases {
		got, err := ValidateCurrency(in)
		if err != nil || got != want {
			t.Errorf("ValidateCurrency(%q) = %s, %v; want %s", in, got, err, want)
		}
	}

	// MULTI 不是交易币种
	for _, s := range []string{"", "EUR", "MULTI"} {
		if _, err := ValidateCurrency(s); err == nil {
			t.Errorf("ValidateCurrency(%q) error = nil, want error", s)
		}
	}
}

// TestValidateDate_Valid 测试有效日期
func TestValidateDate_Valid(t *testing.T) {
	testCases := []string{
		"2024-01-01",
		"2024-12-31",
		"2025-06-15",
	}

	for _, date := range testCases {
		err := ValidateDate(date)
		if err != nil {
			t.Errorf("ValidateDate(%q) error = %v, want nil", date, err)
		}
	}
}

// TestValidateDate_InvalidFormat 测试无效格式（异常）
func TestValidateDate_InvalidFormat(t *testing.T) {
	testCases := []string{
		"",
		"2024/01/01",
		"01-01-2024",
		"2024-1-1",
		"not-a-date",
		"2024-13-01", // 月份错误
		"2024-01-32", // 日期错误
	}

	for _, date := range testCases {
		err := ValidateDate(date)
		if err == nil {
			t.Errorf("ValidateDate(%q) error = nil, want error", date)
		}
	}
}

func TestValidateName(t *testing.T) {
	for _, name := range []string{"Karim", "شركة الرافدين", "Korek Trading"} {
		if err := ValidateName(name); err != nil {
			t.Errorf("ValidateName(%q) error = %v, want nil", name, err)
		}
	}
	if err := ValidateName("   "); err == nil {
		t.Error("ValidateName(blank) error = nil, want error")
	}
	if err := ValidateName(strings.Repeat("a", 129)); err == nil {
		t.Error("ValidateName(long) error = nil, want error")
	}
}

func TestParseID(t *testing.T) {
	if id, err := ParseID("42"); err != nil || id != 42 {
		t.Errorf("ParseID(42) = %d, %v", id, err)
	}
	for _, s := range []string{"", "0", "-1", "abc"} {
		if _, err := ParseID(s); err == nil {
			t.Errorf("ParseID(%q) error = nil, want error", s)
		}
	}
}
