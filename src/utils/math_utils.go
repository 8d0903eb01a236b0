package utils

import "math"

// RoundFloat rounds a float64 to a specified number of decimal places.
func RoundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

// RoundMoney rounds a monetary amount to two decimal places.
func RoundMoney(val float64) float64 {
	return RoundFloat(val, 2)
}

// NonNegative clamps a float64 at zero. Over-repayment must never surface as
// a negative remaining balance.
func NonNegative(val float64) float64 {
	if val < 0 {
		return 0
	}
	return val
}
