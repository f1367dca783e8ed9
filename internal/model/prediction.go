package model

import "time"

// DefaultThreshold is the probability at or above which a customer is
// classified as likely to churn.
const DefaultThreshold = 0.609

// RiskLabel is the human-readable decision for a prediction.
type RiskLabel string

const (
	RiskHigh RiskLabel = "High Risk: Customer likely to churn"
	RiskLow  RiskLabel = "Low Risk: Customer likely to stay"
)

// Source records where the raw record of a prediction came from.
type Source string

const (
	SourceForm  Source = "form"
	SourceFlags Source = "flags"
	SourceBatch Source = "batch"
	SourceOFX   Source = "ofx"
	SourcePlaid Source = "plaid"
)

// Decide converts a churn probability into a binary decision.
func Decide(probability, threshold float64) (bool, RiskLabel) {
	if probability >= threshold {
		return true, RiskHigh
	}
	return false, RiskLow
}

// Prediction is the outcome of scoring one raw record.
type Prediction struct {
	CreatedAt   time.Time     `json:"created_at"`
	ID          string        `json:"id"`
	Label       RiskLabel     `json:"label"`
	Source      Source        `json:"source"`
	Features    FeatureVector `json:"features"`
	CustomerID  int64         `json:"customer_id"`
	Probability float64       `json:"probability"`
	Threshold   float64       `json:"threshold"`
	Churn       bool          `json:"churn"`
}

// PredictionSummary aggregates stored predictions for reporting.
type PredictionSummary struct {
	Since           time.Time
	Until           time.Time
	Total           int
	ChurnCount      int
	MeanProbability float64
}

// ChurnRate returns the share of predictions classified as churn.
func (s PredictionSummary) ChurnRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.ChurnCount) / float64(s.Total)
}
