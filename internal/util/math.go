package util

import "math"

// ClampFloat: v를 [lo, hi] 범위로 제한한다.
func ClampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Round1: 소수점 첫째 자리로 반올림한다. (배터리 추정치 표기용)
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
