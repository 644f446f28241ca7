package order

import "math"

// NDigits 数量运算统一保留的小数位数，避免浮点累计误差。
const NDigits = 4

// Round 将数量按 NDigits 位小数舍入。所有数量加减均须经过该函数。
func Round(v float64) float64 {
	pow := math.Pow10(NDigits)
	return math.Round(v*pow) / pow
}

// RoundDown 将数量向下取整到 step 的整数倍（step<=0 时按 NDigits 舍入）。
func RoundDown(v, step float64) float64 {
	if step <= 0 {
		return Round(v)
	}
	return Round(math.Floor(v/step+1e-9) * step)
}
