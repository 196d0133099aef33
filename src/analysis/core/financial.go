package core

import (
	"math"

	"github.com/shopspring/decimal"
)

// ContractMultiplier is the number of shares per standard equity option contract.
const ContractMultiplier = 100

// -----------------------------------------------------------------------------

// Round rounds half away from zero at the given number of decimal places.
// NaN and infinities are returned unchanged.
func Round(value float64, places int32) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return value
	}
	f, _ := decimal.NewFromFloat(value).Round(places).Float64()
	return f
}

// -----------------------------------------------------------------------------

// SafeRatio returns numerator/denominator, or fallback when denominator is not positive.
func SafeRatio(numerator, denominator, fallback float64) float64 {
	if denominator <= 0 {
		return fallback
	}
	return numerator / denominator
}

// -----------------------------------------------------------------------------

// Premium is the notional traded: lastPrice x volume x contract multiplier, rounded to a whole unit.
func Premium(lastPrice, volume float64) float64 {
	return Round(lastPrice*volume*ContractMultiplier, 0)
}
