package utils

import "github.com/shopspring/decimal"

// Round2 金额保留两位小数 (标准四舍五入)
// 所有对外输出的金额都必须经过这里，避免 float 直接截断
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Percent 按百分比计算折扣金额，结果保留两位小数
func Percent(total float64, pct float64) float64 {
	f, _ := decimal.NewFromFloat(total).
		Mul(decimal.NewFromFloat(pct)).
		Div(decimal.NewFromInt(100)).
		Round(2).
		Float64()
	return f
}
