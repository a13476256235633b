package analytics

import (
	"math"

	"github.com/shopspring/decimal"
)

// finite coerces NaN and infinities to zero.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// amount converts a money value for exact accumulation.
func amount(v float64) decimal.Decimal {
	return decimal.NewFromFloat(finite(v))
}

func toFloat(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// ratio returns part/whole, or 0 when whole is zero.
func ratio(part, whole decimal.Decimal) float64 {
	if whole.IsZero() {
		return 0
	}
	return part.DivRound(whole, 12).InexactFloat64()
}

var half = decimal.NewFromFloat(0.5)

// percent returns round(part/whole*100), or 0 when whole is zero. Halves
// round up, so -2.5 becomes -2.
func percent(part, whole decimal.Decimal) int {
	if whole.IsZero() {
		return 0
	}
	return int(part.Mul(decimal.NewFromInt(100)).DivRound(whole, 12).Add(half).Floor().IntPart())
}

func percentOfCount(part, whole int) int {
	return percent(decimal.NewFromInt(int64(part)), decimal.NewFromInt(int64(whole)))
}
