package model

import "time"

// Trend is the short-window momentum classification.
type Trend string

const (
	TrendUp       Trend = "UP"
	TrendDown     Trend = "DOWN"
	TrendSideways Trend = "SIDEWAYS"
)

// Advice is the category produced by the signal scorer.
type Advice string

const (
	AdviceNeutral        Advice = "NEUTRAL"
	AdviceBuyOversold    Advice = "BUY_OVERSOLD"
	AdviceSellOverbought Advice = "SELL_OVERBOUGHT"
	AdviceBuyMACD        Advice = "BUY_MACD_POSITIVE"
	AdviceSellMACD       Advice = "SELL_MACD_NEGATIVE"
	AdviceBuyBelowBand   Advice = "BUY_BELOW_BAND"
	AdviceSellAboveBand  Advice = "SELL_ABOVE_BAND"
)

// Direction collapses an advice into "BUY", "SELL" or "NEUTRAL".
func (a Advice) Direction() string {
	switch a {
	case AdviceBuyOversold, AdviceBuyMACD, AdviceBuyBelowBand:
		return "BUY"
	case AdviceSellOverbought, AdviceSellMACD, AdviceSellAboveBand:
		return "SELL"
	default:
		return "NEUTRAL"
	}
}

// AnalysisResult is the immutable outcome of one analysis pass.
type AnalysisResult struct {
	ItemID     string    `json:"item_id"`
	Platform   string    `json:"platform"`
	Summary              // latest/highest/lowest/average/deviation
	RSI        Value     `json:"rsi"`
	MACD       MACD      `json:"macd"`
	Bollinger  Bands     `json:"bollinger"`
	Trend      Trend     `json:"trend"`
	TrendScore int       `json:"trend_score"`
	Advice     Advice    `json:"advice"`
	Confidence int       `json:"confidence"`
	Points     int       `json:"points"`
	ComputedAt time.Time `json:"computed_at"`
}
