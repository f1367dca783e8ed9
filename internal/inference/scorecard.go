package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"slices"

	"github.com/Veraticus/churn/internal/common"
	"github.com/Veraticus/churn/internal/model"
)

// Scorecard is a logistic model stored as JSON. Numeric features contribute
// weight*value; categorical features contribute the weight of their level,
// or nothing for a level the model has not seen.
type Scorecard struct {
	Numeric      map[string]float64            `json:"numeric"`
	Categorical  map[string]map[string]float64 `json:"categorical"`
	Version      string                        `json:"version,omitempty"`
	FeatureOrder []string                      `json:"feature_order"`
	Intercept    float64                       `json:"intercept"`
}

// LoadScorecard reads and checks a scorecard model file.
func LoadScorecard(path string) (*Scorecard, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open model file: %w", common.ErrModelUnavailable, err)
	}
	defer func() { _ = f.Close() }()

	sc, err := ReadScorecard(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load model %s: %w", path, err)
	}
	return sc, nil
}

// ReadScorecard decodes a scorecard and verifies it was trained on the
// fixed feature order.
func ReadScorecard(r io.Reader) (*Scorecard, error) {
	var sc Scorecard
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("%w: failed to parse model: %w", common.ErrModelUnavailable, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks the feature order and that every weight names a feature
// of the right kind.
func (s *Scorecard) Validate() error {
	if !slices.Equal(s.FeatureOrder, model.FeatureNames) {
		return fmt.Errorf("%w: model feature order %v does not match %v",
			common.ErrModelUnavailable, s.FeatureOrder, model.FeatureNames)
	}
	for name, w := range s.Numeric {
		if !slices.Contains(model.FeatureNames, name) || model.IsCategorical(name) {
			return fmt.Errorf("%w: numeric weight for unknown feature %q", common.ErrModelUnavailable, name)
		}
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: weight for %q is not finite", common.ErrModelUnavailable, name)
		}
	}
	for name := range s.Categorical {
		if !model.IsCategorical(name) {
			return fmt.Errorf("%w: categorical weights for non-categorical feature %q", common.ErrModelUnavailable, name)
		}
	}
	return nil
}

// Score returns the churn probability for v.
func (s *Scorecard) Score(ctx context.Context, v model.FeatureVector) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	z := s.Intercept
	for _, f := range v.Features() {
		switch f.Kind {
		case model.KindCategorical:
			z += s.Categorical[f.Name][f.Text]
		default:
			z += s.Numeric[f.Name] * f.Number
		}
	}

	p := sigmoid(z)
	if err := checkProbability(p); err != nil {
		return 0, err
	}
	return p, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
