package calculator

import "PriceSentinel/internal/model"

// rsiEpsilon replaces a zero average loss so RS stays finite.
const rsiEpsilon = 1e-10

// CalculateRSI computes a simple-average RSI over the last `period` price changes.
// Requires more than period prices; otherwise the result is Unavailable.
func CalculateRSI(prices []float64, period int) model.Value {
	if period <= 0 || len(prices) <= period {
		return model.Unavailable
	}

	window := prices[len(prices)-period-1:]
	var gains, losses float64
	for i := 1; i < len(window); i++ {
		change := window[i] - window[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	if losses == 0 {
		avgLoss = rsiEpsilon
	}
	rs := avgGain / avgLoss
	return model.Some(round(100.0-100.0/(1.0+rs), priceDecimals))
}
