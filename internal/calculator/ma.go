package calculator

import "PriceSentinel/internal/model"

// CalculateSMA computes the simple moving average of the trailing `period` values.
func CalculateSMA(values []float64, period int) model.Value {
	if period <= 0 || len(values) < period {
		return model.Unavailable
	}
	return model.Some(mean(values[len(values)-period:]))
}

// CalculateEMA returns the final exponential moving average of values.
// The average is seeded with the SMA of the first `period` values.
func CalculateEMA(values []float64, period int) model.Value {
	series := CalculateEMASeries(values, period)
	if len(series) == 0 {
		return model.Unavailable
	}
	return series[len(series)-1]
}

// CalculateEMASeries returns the EMA at every index of values. Entries before
// index period-1 are Unavailable, so the result stays index-aligned with the input.
func CalculateEMASeries(values []float64, period int) []model.Value {
	if period <= 0 || len(values) < period {
		return nil
	}

	out := make([]model.Value, len(values))
	k := 2.0 / float64(period+1)
	ema := mean(values[:period])
	out[period-1] = model.Some(ema)
	for i := period; i < len(values); i++ {
		ema = values[i]*k + ema*(1-k)
		out[i] = model.Some(ema)
	}
	return out
}
