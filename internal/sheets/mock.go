package sheets

import (
	"context"
	"sync"

	"github.com/Veraticus/churn/internal/model"
)

// MockWriter is a mock implementation of ReportWriter for testing.
type MockWriter struct {
	WriteFunc       func(ctx context.Context, predictions []*model.Prediction, summary model.PredictionSummary) error
	WriteCalls      []WriteCall
	LastPredictions []*model.Prediction
	LastSummary     model.PredictionSummary
	WriteCallCount  int
	mu              sync.Mutex
}

// WriteCall represents a single call to Write.
type WriteCall struct {
	Error       error
	Predictions []*model.Prediction
	Summary     model.PredictionSummary
}

// NewMockWriter creates a new mock writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{
		WriteCalls: make([]WriteCall, 0),
	}
}

// Write implements the ReportWriter interface.
func (m *MockWriter) Write(ctx context.Context, predictions []*model.Prediction, summary model.PredictionSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WriteCallCount++
	m.LastPredictions = predictions
	m.LastSummary = summary

	var err error
	if m.WriteFunc != nil {
		err = m.WriteFunc(ctx, predictions, summary)
	}

	m.WriteCalls = append(m.WriteCalls, WriteCall{
		Predictions: predictions,
		Summary:     summary,
		Error:       err,
	})

	return err
}

// GetWriteCalls returns a copy of all write calls.
func (m *MockWriter) GetWriteCalls() []WriteCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]WriteCall, len(m.WriteCalls))
	copy(calls, m.WriteCalls)
	return calls
}

// SetWriteError configures the mock to return an error on the next Write call.
func (m *MockWriter) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WriteFunc = func(context.Context, []*model.Prediction, model.PredictionSummary) error {
		return err
	}
}
