// Package storage provides the prediction history persistence layer.
package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Veraticus/churn/internal/model"
)

// Validation errors.
var (
	ErrNilContext        = errors.New("context cannot be nil")
	ErrEmptyString       = errors.New("string parameter cannot be empty")
	ErrNilParameter      = errors.New("parameter cannot be nil")
	ErrInvalidPrediction = errors.New("invalid prediction")
	ErrInvalidLimit      = errors.New("limit cannot be negative")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validatePrediction validates a prediction before it is stored.
func validatePrediction(p *model.Prediction) error {
	if p == nil {
		return fmt.Errorf("%w: prediction", ErrNilParameter)
	}
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidPrediction)
	}
	if p.CreatedAt.IsZero() {
		return fmt.Errorf("%w: missing creation time", ErrInvalidPrediction)
	}
	if p.Source == "" {
		return fmt.Errorf("%w: missing source", ErrInvalidPrediction)
	}
	if math.IsNaN(p.Probability) || p.Probability < 0 || p.Probability > 1 {
		return fmt.Errorf("%w: probability must be between 0 and 1", ErrInvalidPrediction)
	}
	if math.IsNaN(p.Threshold) || p.Threshold <= 0 || p.Threshold > 1 {
		return fmt.Errorf("%w: threshold must be in (0, 1]", ErrInvalidPrediction)
	}
	return nil
}
