package engine

import (
	"context"

	"github.com/Veraticus/churn/internal/model"
)

// Deriver turns a raw record into a feature vector.
type Deriver interface {
	Derive(raw model.RawRecord) (model.FeatureVector, error)
}

// Validator checks a raw record before any feature is derived.
type Validator interface {
	Record(raw model.RawRecord) error
}

// Recorder persists completed predictions.
type Recorder interface {
	SavePrediction(ctx context.Context, p *model.Prediction) error
}
