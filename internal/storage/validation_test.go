package storage

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/Veraticus/churn/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestValidatePrediction(t *testing.T) {
	tests := []struct {
		mutate  func(*model.Prediction)
		wantErr error
		name    string
	}{
		{name: "valid", mutate: func(*model.Prediction) {}},
		{name: "missing id", mutate: func(p *model.Prediction) { p.ID = " " }, wantErr: ErrInvalidPrediction},
		{name: "missing time", mutate: func(p *model.Prediction) { p.CreatedAt = time.Time{} }, wantErr: ErrInvalidPrediction},
		{name: "missing source", mutate: func(p *model.Prediction) { p.Source = "" }, wantErr: ErrInvalidPrediction},
		{name: "probability above one", mutate: func(p *model.Prediction) { p.Probability = 1.01 }, wantErr: ErrInvalidPrediction},
		{name: "probability NaN", mutate: func(p *model.Prediction) { p.Probability = math.NaN() }, wantErr: ErrInvalidPrediction},
		{name: "zero threshold", mutate: func(p *model.Prediction) { p.Threshold = 0 }, wantErr: ErrInvalidPrediction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testPrediction("p-1", 1, 0.5, baseTime)
			tt.mutate(p)
			err := validatePrediction(p)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.ErrorIs(t, validatePrediction(nil), ErrNilParameter)
}

func TestSavePrediction_Rejected(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	p := testPrediction("p-1", 1, 0.5, baseTime)
	p.ID = ""
	assert.ErrorIs(t, store.SavePrediction(context.Background(), p), ErrInvalidPrediction)

	//nolint:staticcheck // exercising nil context validation
	assert.ErrorIs(t, store.SavePrediction(nil, testPrediction("p-2", 1, 0.5, baseTime)), ErrNilContext)
}
