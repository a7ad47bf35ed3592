package models

import (
	"database/sql/driver"

	"github.com/shopspring/decimal"
)

const moneyPlaces = 2

// Money 两位小数金额，JSON 输出为定点字符串
type Money struct {
	decimal.Decimal
}

// NewMoneyFromDecimal 按两位小数取整
func NewMoneyFromDecimal(amount decimal.Decimal) Money {
	return Money{Decimal: amount.Round(moneyPlaces)}
}

// MustMoney 解析金额字符串，格式错误时 panic
func MustMoney(amount string) Money {
	return NewMoneyFromDecimal(decimal.RequireFromString(amount))
}

// MulQuantity 单价 × 数量
func (m Money) MulQuantity(quantity int) Money {
	return NewMoneyFromDecimal(m.Mul(decimal.NewFromInt(int64(quantity))))
}

// Add 金额相加
func (m Money) Add(other Money) Money {
	return NewMoneyFromDecimal(m.Decimal.Add(other.Decimal))
}

func (m Money) String() string {
	return m.StringFixed(moneyPlaces)
}

// MarshalJSON 输出如 "6.00"
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON 接受字符串或数字
func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	*m = NewMoneyFromDecimal(d)
	return nil
}

// Value 写库前按两位小数取整
func (m Money) Value() (driver.Value, error) {
	return m.Round(moneyPlaces).Value()
}

// Scan 读库
func (m *Money) Scan(value interface{}) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return err
	}
	*m = NewMoneyFromDecimal(d)
	return nil
}
