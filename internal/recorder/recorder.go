package recorder

import "PriceSentinel/internal/model"

// Recorder persists analysis and alert history for later inspection.
type Recorder interface {
	RecordAnalysis(res *model.AnalysisResult) error
	RecordAlert(a *model.Alert) error
	Close() error
}
