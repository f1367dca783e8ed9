package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name        string
		wantLabel   RiskLabel
		probability float64
		wantChurn   bool
	}{
		{name: "exactly at threshold", probability: 0.609, wantChurn: true, wantLabel: RiskHigh},
		{name: "just below threshold", probability: 0.6089, wantChurn: false, wantLabel: RiskLow},
		{name: "certain churn", probability: 1, wantChurn: true, wantLabel: RiskHigh},
		{name: "certain stay", probability: 0, wantChurn: false, wantLabel: RiskLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			churn, label := Decide(tt.probability, DefaultThreshold)
			assert.Equal(t, tt.wantChurn, churn)
			assert.Equal(t, tt.wantLabel, label)
		})
	}
}

func TestPredictionSummary_ChurnRate(t *testing.T) {
	assert.Zero(t, PredictionSummary{}.ChurnRate())
	assert.InDelta(t, 0.25, PredictionSummary{Total: 8, ChurnCount: 2}.ChurnRate(), 1e-12)
}
