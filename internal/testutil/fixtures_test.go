package testutil

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/churn/internal/features"
	"github.com/Veraticus/churn/internal/inference"
	"github.com/Veraticus/churn/internal/model"
	"github.com/Veraticus/churn/internal/reference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixtures_AreConsistent(t *testing.T) {
	ds, err := reference.Load(WriteReference(t))
	require.NoError(t, err)
	assert.Equal(t, 4, ds.Rows())

	pipeline, err := features.NewPipeline(ds)
	require.NoError(t, err)

	raw, err := model.ParseRawRecord(RawValues("9"))
	require.NoError(t, err)
	v, err := pipeline.Derive(raw)
	require.NoError(t, err)

	sc, err := inference.LoadScorecard(WriteScorecard(t, Scorecard()))
	require.NoError(t, err)
	p, err := sc.Score(t.Context(), v)
	require.NoError(t, err)
	assert.Greater(t, p, 0.0)
	assert.Less(t, p, 1.0)
}

func TestSetupTestDB(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	db := SetupTestDB(t,
		Prediction("a", 1, 0.9, at),
		Prediction("b", 2, 0.1, at.Add(time.Hour)),
	)
	assert.Equal(t, 2, db.Count())

	db.Seed(Prediction("c", 3, 0.5, at))
	assert.Equal(t, 3, db.Count())
}

func TestWriteFile(t *testing.T) {
	path := WriteFile(t, "x.txt", "hello")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.True(t, strings.HasSuffix(path, "x.txt"))
}
