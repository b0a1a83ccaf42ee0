package model

import "time"

// WatchlistEntry is a tracked (item, platform) pair.
type WatchlistEntry struct {
	ItemID   string    `json:"item_id"`
	Platform string    `json:"platform"`
	AddedAt  time.Time `json:"added_at"`
}

// Matches reports whether the entry refers to the given pair.
func (e WatchlistEntry) Matches(itemID, platform string) bool {
	return e.ItemID == itemID && e.Platform == platform
}

// AlertKind indicates which rule raised an alert.
type AlertKind string

const (
	AlertDeviation    AlertKind = "DEVIATION"
	AlertStrongSignal AlertKind = "STRONG_SIGNAL"
)

// Alert is raised by the evaluator and handed to notifiers.
type Alert struct {
	ID        string         `json:"id"`
	Kind      AlertKind      `json:"kind"`
	ItemID    string         `json:"item_id"`
	Platform  string         `json:"platform"`
	Value     float64        `json:"value"`     // deviation % or confidence
	Threshold float64        `json:"threshold"`
	Result    AnalysisResult `json:"result"`
	RaisedAt  time.Time      `json:"raised_at"`
}
