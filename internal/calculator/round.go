package calculator

import (
	"math"

	"github.com/shopspring/decimal"
)

const (
	priceDecimals = 2
	macdDecimals  = 4
)

// round rounds half away from zero to the given number of decimal places.
func round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
