package utils

import "math"

// SafeDiv 返回 a/b，除数为 0 时返回 0
func SafeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// IsFinite 判断 v 既不是 NaN 也不是 ±Inf
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ClampInt 把 v 限制在 [lo, hi] 内
func ClampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
