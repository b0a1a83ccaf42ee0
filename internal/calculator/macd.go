package calculator

import "PriceSentinel/internal/model"

// CalculateMACD computes the MACD line, the signal line (EMA of the MACD line
// history) and the histogram. Values are rounded to 4 decimals.
func CalculateMACD(values []float64, fast, slow, signal int) model.MACD {
	if fast <= 0 || slow <= 0 || signal <= 0 || len(values) < slow {
		return model.MACD{}
	}

	fastEMA := CalculateEMASeries(values, fast)
	slowEMA := CalculateEMASeries(values, slow)
	if fastEMA == nil || slowEMA == nil {
		return model.MACD{}
	}

	line := make([]float64, 0, len(values))
	for i := range values {
		if fastEMA[i].Valid && slowEMA[i].Valid {
			line = append(line, fastEMA[i].V-slowEMA[i].V)
		}
	}
	if len(line) < signal {
		return model.MACD{}
	}

	sig := CalculateEMA(line, signal)
	if !sig.Valid {
		return model.MACD{}
	}
	last := line[len(line)-1]
	return model.MACD{
		Line:      model.Some(round(last, macdDecimals)),
		Signal:    model.Some(round(sig.V, macdDecimals)),
		Histogram: model.Some(round(last-sig.V, macdDecimals)),
	}
}
