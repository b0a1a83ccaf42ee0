package calculator

import (
	"errors"
	"math"

	"PriceSentinel/internal/model"
)

// Summarize returns latest, highest, lowest, average and the deviation of the
// latest price from the average in percent. The deviation is taken against the
// rounded average.
func Summarize(prices []float64) (model.Summary, error) {
	if len(prices) == 0 {
		return model.Summary{}, errors.New("no prices provided")
	}

	high := math.Inf(-1)
	low := math.Inf(1)
	for _, p := range prices {
		if p > high {
			high = p
		}
		if p < low {
			low = p
		}
	}

	latest := prices[len(prices)-1]
	avg := round(mean(prices), priceDecimals)
	dev := 0.0
	if avg != 0 {
		dev = round((latest-avg)/avg*100, priceDecimals)
	}
	return model.Summary{
		Latest:       latest,
		Highest:      high,
		Lowest:       low,
		Average:      avg,
		DeviationPct: dev,
	}, nil
}
