// Package engine runs raw customer records through validation, feature
// derivation, scoring and the churn decision.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/churn/internal/common"
	"github.com/Veraticus/churn/internal/inference"
	"github.com/Veraticus/churn/internal/model"
	"github.com/Veraticus/churn/internal/validation"
	"github.com/google/uuid"
)

// Predictor orchestrates a single prediction.
type Predictor struct {
	deriver   Deriver
	scorer    inference.Scorer
	validator Validator
	recorder  Recorder
	logger    *slog.Logger
	clock     func() time.Time
	newID     func() string
	threshold float64
}

// Option configures a Predictor.
type Option func(*Predictor)

// WithThreshold overrides model.DefaultThreshold.
func WithThreshold(threshold float64) Option {
	return func(p *Predictor) {
		p.threshold = threshold
	}
}

// WithRecorder stores every successful prediction.
func WithRecorder(r Recorder) Option {
	return func(p *Predictor) {
		p.recorder = r
	}
}

// WithValidator replaces the default input validator.
func WithValidator(v Validator) Option {
	return func(p *Predictor) {
		p.validator = v
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Predictor) {
		p.logger = logger
	}
}

// WithClock sets the time source for prediction timestamps.
func WithClock(clock func() time.Time) Option {
	return func(p *Predictor) {
		p.clock = clock
	}
}

// WithIDGenerator sets the prediction ID source.
func WithIDGenerator(newID func() string) Option {
	return func(p *Predictor) {
		p.newID = newID
	}
}

// New creates a predictor. The deriver and scorer are required.
func New(deriver Deriver, scorer inference.Scorer, opts ...Option) (*Predictor, error) {
	if deriver == nil {
		return nil, fmt.Errorf("%w: feature pipeline is required", common.ErrMissingConfig)
	}
	if scorer == nil {
		return nil, fmt.Errorf("%w: scorer is required", common.ErrMissingConfig)
	}

	p := &Predictor{
		deriver:   deriver,
		scorer:    scorer,
		validator: validation.New(),
		logger:    slog.Default(),
		clock:     time.Now,
		newID:     uuid.NewString,
		threshold: model.DefaultThreshold,
	}
	for _, opt := range opts {
		opt(p)
	}

	if !(p.threshold > 0 && p.threshold <= 1) {
		return nil, fmt.Errorf("%w: threshold %v must be in (0, 1]", common.ErrInvalidConfig, p.threshold)
	}
	return p, nil
}

// Threshold returns the decision threshold in use.
func (p *Predictor) Threshold() float64 {
	return p.threshold
}

// Predict validates raw, derives its features, scores them and applies the
// decision threshold. Invalid input is rejected before any scoring happens.
func (p *Predictor) Predict(ctx context.Context, raw model.RawRecord, source model.Source) (*model.Prediction, error) {
	if err := p.validator.Record(raw); err != nil {
		return nil, err
	}

	features, err := p.deriver.Derive(raw)
	if err != nil {
		return nil, err
	}

	probability, err := p.scorer.Score(ctx, features)
	if err != nil {
		return nil, fmt.Errorf("failed to score customer %d: %w", raw.CustomerID, err)
	}

	churn, label := model.Decide(probability, p.threshold)
	prediction := &model.Prediction{
		ID:          p.newID(),
		CreatedAt:   p.clock().UTC(),
		CustomerID:  raw.CustomerID,
		Source:      source,
		Features:    features,
		Probability: probability,
		Threshold:   p.threshold,
		Churn:       churn,
		Label:       label,
	}

	p.logger.Debug("Scored customer",
		"customer_id", raw.CustomerID,
		"probability", probability,
		"churn", churn,
		"source", source)

	if p.recorder != nil {
		if err := p.recorder.SavePrediction(ctx, prediction); err != nil {
			return nil, fmt.Errorf("failed to save prediction: %w", err)
		}
	}

	return prediction, nil
}
