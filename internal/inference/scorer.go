package inference

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/churn/internal/common"
	"github.com/Veraticus/churn/internal/model"
)

// Supported providers.
const (
	ProviderScorecard = "scorecard"
	ProviderHTTP      = "http"
)

// DefaultTimeout bounds a single remote scoring call.
const DefaultTimeout = 30 * time.Second

// Scorer returns the probability that a customer churns.
type Scorer interface {
	Score(ctx context.Context, v model.FeatureVector) (float64, error)
}

// Config selects and configures a scorer.
type Config struct {
	Provider string
	Path     string
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// New creates a scorer for the configured provider. Model files are loaded
// and checked here so a bad model fails before any prediction is made.
func New(cfg Config) (Scorer, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderScorecard, "":
		if cfg.Path == "" {
			return nil, fmt.Errorf("%w: model.path is required for the scorecard provider", common.ErrMissingConfig)
		}
		return LoadScorecard(cfg.Path)
	case ProviderHTTP:
		return newHTTPScorer(cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported model provider: %s", common.ErrInvalidConfig, cfg.Provider)
	}
}

// checkProbability rejects values outside [0, 1].
func checkProbability(p float64) error {
	if !(p >= 0 && p <= 1) {
		return fmt.Errorf("%w: probability %v outside [0, 1]", common.ErrScoringFailed, p)
	}
	return nil
}
