package calculator

import (
	"math"

	"PriceSentinel/internal/model"
)

// CalculateBollinger computes Bollinger bands over the trailing `period` values
// using the population standard deviation.
func CalculateBollinger(values []float64, period int, k float64) model.Bands {
	if period <= 0 || len(values) < period {
		return model.Bands{}
	}

	window := values[len(values)-period:]
	mid := mean(window)
	variance := 0.0
	for _, v := range window {
		variance += (v - mid) * (v - mid)
	}
	stdDev := math.Sqrt(variance / float64(period))

	return model.Bands{
		Mid:   model.Some(round(mid, priceDecimals)),
		Upper: model.Some(round(mid+k*stdDev, priceDecimals)),
		Lower: model.Some(round(mid-k*stdDev, priceDecimals)),
	}
}
