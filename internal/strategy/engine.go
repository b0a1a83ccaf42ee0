package strategy

import (
	"errors"
	"time"

	"PriceSentinel/internal/calculator"
	"PriceSentinel/internal/model"
)

// Params holds indicator periods and scoring bounds.
type Params struct {
	RSIPeriod       int
	RSIOversold     float64
	RSIOverbought   float64
	MACDFast        int
	MACDSlow        int
	MACDSignal      int
	BollingerPeriod int
	BollingerK      float64
}

// DefaultParams returns the standard indicator settings.
func DefaultParams() Params {
	return Params{
		RSIPeriod:       14,
		RSIOversold:     30,
		RSIOverbought:   70,
		MACDFast:        12,
		MACDSlow:        26,
		MACDSignal:      9,
		BollingerPeriod: 20,
		BollingerK:      2,
	}
}

// ErrEmptySeries is returned by Analyze when no positive prices remain.
var ErrEmptySeries = errors.New("series has no valid prices")

// Analyze runs every indicator on the series and scores the result.
// The series is filtered to positive prices first.
func Analyze(series model.PriceSeries, p Params) (model.AnalysisResult, error) {
	series = series.Filter()
	prices := series.Prices()

	summary, err := calculator.Summarize(prices)
	if err != nil {
		return model.AnalysisResult{}, ErrEmptySeries
	}

	res := model.AnalysisResult{
		ItemID:     series.ItemID,
		Platform:   series.Platform,
		Summary:    summary,
		RSI:        calculator.CalculateRSI(prices, p.RSIPeriod),
		MACD:       calculator.CalculateMACD(prices, p.MACDFast, p.MACDSlow, p.MACDSignal),
		Bollinger:  calculator.CalculateBollinger(prices, p.BollingerPeriod, p.BollingerK),
		Points:     len(prices),
		ComputedAt: time.Now(),
	}
	res.Trend, res.TrendScore = ClassifyTrend(prices)
	res.Advice, res.Confidence = Score(summary.Latest, res.RSI, res.MACD, res.Bollinger, p)
	return res, nil
}

// Score combines indicator readings into an advice and a 0-100 confidence.
// The order matters: RSI sets the initial advice, MACD only fills in when RSI
// gave none, and a Bollinger breach always overrides.
func Score(latest float64, rsi model.Value, macd model.MACD, bands model.Bands, p Params) (model.Advice, int) {
	advice := model.AdviceNeutral
	confidence := 0

	if rsi.Valid {
		if rsi.V < p.RSIOversold {
			advice = model.AdviceBuyOversold
			confidence += 40
		} else if rsi.V > p.RSIOverbought {
			advice = model.AdviceSellOverbought
			confidence += 40
		}
	}

	if macd.Available() {
		if macd.Histogram.V > 0 {
			confidence += 30
			if advice == model.AdviceNeutral {
				advice = model.AdviceBuyMACD
			}
		} else {
			confidence += 10
			if advice == model.AdviceNeutral {
				advice = model.AdviceSellMACD
			}
		}
	}

	if bands.Available() {
		switch {
		case latest < bands.Lower.V:
			advice = model.AdviceBuyBelowBand
			confidence += 30
		case latest > bands.Upper.V:
			advice = model.AdviceSellAboveBand
			confidence += 30
		default:
			confidence += 10
		}
	}

	if confidence > 100 {
		confidence = 100
	}
	return advice, confidence
}
