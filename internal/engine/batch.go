package engine

import (
	"context"

	"github.com/Veraticus/churn/internal/model"
)

// RowFailure is a batch row that could not be predicted.
type RowFailure struct {
	Err        error
	Index      int
	CustomerID int64
}

// BatchResult holds the outcome of PredictBatch.
type BatchResult struct {
	Predictions []*model.Prediction
	Failures    []RowFailure
}

// ProgressFunc is called after each row with the number of rows done.
type ProgressFunc func(done, total int)

// PredictBatch predicts every record in order. A failing row is recorded in
// Failures and the batch continues; only context cancellation stops it early.
func (p *Predictor) PredictBatch(ctx context.Context, raws []model.RawRecord, source model.Source, onProgress ProgressFunc) (BatchResult, error) {
	var result BatchResult

	for i, raw := range raws {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		prediction, err := p.Predict(ctx, raw, source)
		if err != nil {
			p.logger.Warn("Failed to score row",
				"row", i,
				"customer_id", raw.CustomerID,
				"error", err)
			result.Failures = append(result.Failures, RowFailure{
				Index:      i,
				CustomerID: raw.CustomerID,
				Err:        err,
			})
		} else {
			result.Predictions = append(result.Predictions, prediction)
		}

		if onProgress != nil {
			onProgress(i+1, len(raws))
		}
	}

	p.logger.Debug("Batch complete",
		"predicted", len(result.Predictions),
		"failed", len(result.Failures))

	return result, nil
}
