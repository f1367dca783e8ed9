package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/Veraticus/churn/internal/common"
	"github.com/Veraticus/churn/internal/model"
)

// httpScorer asks a remote model server for a probability.
type httpScorer struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
}

type scoreFeature struct {
	Value any    `json:"value"`
	Name  string `json:"name"`
}

type scoreRequest struct {
	Features    []scoreFeature `json:"features"`
	CatFeatures []string       `json:"cat_features"`
}

type scoreResponse struct {
	Probability *float64 `json:"probability"`
}

func newHTTPScorer(cfg Config) (Scorer, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: model.endpoint is required for the http provider", common.ErrMissingConfig)
	}
	u, err := url.Parse(cfg.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid model endpoint %q", common.ErrInvalidConfig, cfg.Endpoint)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &httpScorer{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Score sends one scoring request. Failures are returned, never retried.
func (s *httpScorer) Score(ctx context.Context, v model.FeatureVector) (float64, error) {
	features := v.Features()
	body := scoreRequest{
		Features:    make([]scoreFeature, 0, len(features)),
		CatFeatures: model.CategoricalFeatures,
	}
	for _, f := range features {
		body.Features = append(body.Features, scoreFeature{Name: f.Name, Value: f.Value()})
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: request failed: %w", common.ErrScoringFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to read response: %w", common.ErrScoringFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("%w: model server error (status %d): %s",
			common.ErrScoringFailed, resp.StatusCode, bytes.TrimSpace(respBody))
	}

	var out scoreResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return 0, fmt.Errorf("%w: failed to parse response: %w", common.ErrScoringFailed, err)
	}
	if out.Probability == nil {
		return 0, fmt.Errorf("%w: response has no probability", common.ErrScoringFailed)
	}
	if err := checkProbability(*out.Probability); err != nil {
		return 0, err
	}
	return *out.Probability, nil
}
