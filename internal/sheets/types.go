package sheets

import (
	"time"

	"github.com/Veraticus/churn/internal/model"
	"github.com/shopspring/decimal"
)

// PredictionRow is one row of the Predictions section.
type PredictionRow struct {
	CreatedAt   time.Time
	ID          string
	Label       string
	Source      string
	CustomerID  int64
	Probability decimal.Decimal
	Threshold   decimal.Decimal
	Churn       bool
}

// NewPredictionRow converts a prediction into a report row with
// probabilities rounded to four places.
func NewPredictionRow(p *model.Prediction) PredictionRow {
	return PredictionRow{
		CreatedAt:   p.CreatedAt,
		ID:          p.ID,
		Label:       string(p.Label),
		Source:      string(p.Source),
		CustomerID:  p.CustomerID,
		Probability: decimal.NewFromFloat(p.Probability).Round(4),
		Threshold:   decimal.NewFromFloat(p.Threshold).Round(4),
		Churn:       p.Churn,
	}
}

// Values renders the row as sheet cells.
func (r PredictionRow) Values() []any {
	churn := "No"
	if r.Churn {
		churn = "Yes"
	}
	return []any{
		r.CreatedAt.Format("2006-01-02 15:04"),
		r.CustomerID,
		r.Probability.InexactFloat64(),
		r.Threshold.InexactFloat64(),
		churn,
		r.Label,
		r.Source,
		r.ID,
	}
}

// SourceSummaryRow counts predictions by source.
type SourceSummaryRow struct {
	Source     string
	Total      int
	ChurnCount int
}
