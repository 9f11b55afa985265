// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/Aymnotime/Calculateur--micro-saas-b2b/pkg/constants"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Used for presentation only. Values too large to scale are already whole
// and come back unchanged.
func Round(val float64) float64 {
	scaled := val * constants.DecimalPrecision
	if math.IsInf(scaled, 0) {
		return Finite(val)
	}
	return math.Round(scaled) / constants.DecimalPrecision
}

// IsZero checks if a value is effectively zero (within tolerance)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// SafeDivide divides numerator by denominator and returns 0 when the
// denominator is not strictly positive.
func SafeDivide(numerator, denominator float64) float64 {
	if denominator <= 0 {
		return 0
	}
	return numerator / denominator
}

// CalculatePercentage calculates what percentage value is of total
func CalculatePercentage(value, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return (value / total) * constants.PercentageMultiplier
}

// ApplyPercentage applies a percentage to a value
func ApplyPercentage(value, percentage float64) float64 {
	return value * (percentage / constants.PercentageMultiplier)
}

// Finite replaces NaN and infinities by zero.
func Finite(val float64) float64 {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return 0
	}
	return val
}
