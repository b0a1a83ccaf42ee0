package alert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PriceSentinel/internal/model"
)

func resultWith(dev float64, conf int) model.AnalysisResult {
	return model.AnalysisResult{
		ItemID:     "1001",
		Platform:   "PS",
		Summary:    model.Summary{DeviationPct: dev},
		Confidence: conf,
	}
}

func TestNewEvaluator_Defaults(t *testing.T) {
	e := NewEvaluator(0, 0)
	assert.Equal(t, 6.0, e.DeviationThreshold)
	assert.Equal(t, 70, e.ConfidenceThreshold)
}

func TestCheckDeviation(t *testing.T) {
	e := NewEvaluator(6.0, 70)
	entry := model.WatchlistEntry{ItemID: "2002", Platform: "Xbox"}

	tests := []struct {
		dev   float64
		alert bool
	}{
		{0, false},
		{5.99, false},
		{6.0, true},
		{-6.0, true},
		{-12.5, true},
		{-5.5, false},
	}
	for _, tt := range tests {
		a := e.CheckDeviation(entry, resultWith(tt.dev, 0))
		assert.Equal(t, tt.alert, a != nil, "deviation %v", tt.dev)
		if a != nil {
			assert.Equal(t, model.AlertDeviation, a.Kind)
			assert.Equal(t, "2002", a.ItemID)
			assert.Equal(t, "Xbox", a.Platform)
			assert.Equal(t, tt.dev, a.Value)
			assert.NotEmpty(t, a.ID)
		}
	}
}

func TestCheckStrongSignal(t *testing.T) {
	e := NewEvaluator(6.0, 70)
	assert.Nil(t, e.CheckStrongSignal(resultWith(0, 69)))

	a := e.CheckStrongSignal(resultWith(0, 70))
	require.NotNil(t, a)
	assert.Equal(t, model.AlertStrongSignal, a.Kind)
	assert.Equal(t, 70.0, a.Value)
	assert.Equal(t, "1001", a.ItemID)
}

func TestAlertsAreNotSuppressed(t *testing.T) {
	e := NewEvaluator(6.0, 70)
	res := resultWith(10, 90)
	first := e.CheckStrongSignal(res)
	second := e.CheckStrongSignal(res)
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestEvaluatorLiteral(t *testing.T) {
	e := &Evaluator{DeviationThreshold: 5, ConfidenceThreshold: 60}
	entry := model.WatchlistEntry{ItemID: "1001", Platform: "PS"}

	a := e.CheckDeviation(entry, resultWith(-5, 0))
	require.NotNil(t, a)
	assert.False(t, a.RaisedAt.IsZero())
	assert.NotNil(t, e.CheckStrongSignal(resultWith(0, 60)))
}
