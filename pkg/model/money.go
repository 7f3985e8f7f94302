package model

import "github.com/shopspring/decimal"

// MoneyScale 金额保留两位小数，与 numeric(12,2) 一致
const MoneyScale = 2

// RoundMoney 四舍五入到分
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// ParseMoney 解析金额字符串
func ParseMoney(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	return RoundMoney(d), nil
}
