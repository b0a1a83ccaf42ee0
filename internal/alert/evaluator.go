// Package alert decides when an analysis result warrants a notification.
//
// There is no deduplication or cooldown: a condition that holds on every
// cycle raises an alert on every cycle.
package alert

import (
	"math"
	"time"

	"github.com/google/uuid"

	"PriceSentinel/internal/model"
)

const (
	DefaultDeviationThreshold  = 6.0
	DefaultConfidenceThreshold = 70
)

// Evaluator holds the alert thresholds.
type Evaluator struct {
	DeviationThreshold  float64 // percent, compared against |deviation|
	ConfidenceThreshold int
	now                 func() time.Time
}

// NewEvaluator creates an Evaluator. Non-positive thresholds fall back to the defaults.
func NewEvaluator(deviation float64, confidence int) *Evaluator {
	if deviation <= 0 {
		deviation = DefaultDeviationThreshold
	}
	if confidence <= 0 {
		confidence = DefaultConfidenceThreshold
	}
	return &Evaluator{DeviationThreshold: deviation, ConfidenceThreshold: confidence, now: time.Now}
}

// CheckDeviation raises a deviation alert for a watchlist entry when the latest
// price is at least DeviationThreshold percent away from the average.
func (e *Evaluator) CheckDeviation(entry model.WatchlistEntry, res model.AnalysisResult) *model.Alert {
	if math.Abs(res.DeviationPct) < e.DeviationThreshold {
		return nil
	}
	return e.newAlert(model.AlertDeviation, entry.ItemID, entry.Platform, res.DeviationPct, e.DeviationThreshold, res)
}

// CheckStrongSignal raises an alert when the scorer's confidence reaches ConfidenceThreshold.
func (e *Evaluator) CheckStrongSignal(res model.AnalysisResult) *model.Alert {
	if res.Confidence < e.ConfidenceThreshold {
		return nil
	}
	return e.newAlert(model.AlertStrongSignal, res.ItemID, res.Platform, float64(res.Confidence), float64(e.ConfidenceThreshold), res)
}

func (e *Evaluator) newAlert(kind model.AlertKind, itemID, platform string, value, threshold float64, res model.AnalysisResult) *model.Alert {
	now := e.now
	if now == nil {
		now = time.Now
	}
	return &model.Alert{
		ID:        uuid.NewString(),
		Kind:      kind,
		ItemID:    itemID,
		Platform:  platform,
		Value:     value,
		Threshold: threshold,
		Result:    res,
		RaisedAt:  now(),
	}
}
