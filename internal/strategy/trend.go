package strategy

import "PriceSentinel/internal/model"

const (
	trendWindow    = 5
	trendThreshold = 3
)

// ClassifyTrend scores the last few price moves: +1 per rise, -1 per fall.
// A score of +3 or more is an uptrend, -3 or less a downtrend.
func ClassifyTrend(prices []float64) (model.Trend, int) {
	recent := prices
	if len(recent) > trendWindow {
		recent = recent[len(recent)-trendWindow:]
	}

	score := 0
	for i := 1; i < len(recent); i++ {
		switch {
		case recent[i] > recent[i-1]:
			score++
		case recent[i] < recent[i-1]:
			score--
		}
	}

	switch {
	case score >= trendThreshold:
		return model.TrendUp, score
	case score <= -trendThreshold:
		return model.TrendDown, score
	default:
		return model.TrendSideways, score
	}
}
