package engine

import (
	"context"
	"sync"

	"github.com/Veraticus/churn/internal/model"
)

// MockScorer is a test implementation of inference.Scorer.
// It returns Probability for every vector unless ScoreFunc or Err is set.
type MockScorer struct {
	Err         error
	ScoreFunc   func(model.FeatureVector) (float64, error)
	calls       []model.FeatureVector
	Probability float64
	mu          sync.Mutex
}

// Score records the call and returns the configured result.
func (m *MockScorer) Score(_ context.Context, v model.FeatureVector) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, v)
	if m.ScoreFunc != nil {
		return m.ScoreFunc(v)
	}
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Probability, nil
}

// Calls returns the vectors scored so far.
func (m *MockScorer) Calls() []model.FeatureVector {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.FeatureVector(nil), m.calls...)
}

// MockRecorder is an in-memory Recorder.
type MockRecorder struct {
	Err         error
	predictions []*model.Prediction
	mu          sync.Mutex
}

// SavePrediction stores p unless Err is set.
func (m *MockRecorder) SavePrediction(_ context.Context, p *model.Prediction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.predictions = append(m.predictions, p)
	return nil
}

// Predictions returns the stored predictions.
func (m *MockRecorder) Predictions() []*model.Prediction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*model.Prediction(nil), m.predictions...)
}
