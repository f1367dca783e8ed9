package common

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataError_MatchesInvalidData(t *testing.T) {
	err := fmt.Errorf("deriving features: %w", NewDataError("vintage", "must be a number", nil))

	assert.ErrorIs(t, err, ErrInvalidData)

	var de *DataError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "vintage", de.Field)
	assert.Equal(t, "invalid data: vintage: must be a number", de.Error())
}

func TestDataError_UnwrapsCause(t *testing.T) {
	err := NewDataError("vintage", "zero range", ErrDegenerateReference)

	assert.ErrorIs(t, err, ErrDegenerateReference)
	assert.ErrorIs(t, err, ErrInvalidData)
	assert.Contains(t, err.Error(), "degenerate reference statistics")
}

func TestDataErrorFields(t *testing.T) {
	joined := errors.Join(
		NewDataError("age", "too small", nil),
		fmt.Errorf("wrapped: %w", NewDataError("gender", "required", nil)),
		errors.New("unrelated"),
	)

	assert.Equal(t, []string{"age", "gender"}, DataErrorFields(joined))
	assert.Empty(t, DataErrorFields(nil))
}

func TestUserError(t *testing.T) {
	inner := errors.New("file not found")
	err := NewUserError("could not load reference dataset", inner)

	assert.Equal(t, "could not load reference dataset: file not found", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "plain", NewUserError("plain", nil).Error())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "info", want: slog.LevelInfo},
		{input: "", want: slog.LevelInfo},
		{input: "warn", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewLogger_Formats(t *testing.T) {
	var buf bytes.Buffer

	logger, err := NewLogger(&buf, slog.LevelInfo, "json")
	require.NoError(t, err)
	logger.Info("scored", "probability", 0.7)
	assert.Contains(t, buf.String(), `"probability":0.7`)

	_, err = NewLogger(&buf, slog.LevelInfo, "xml")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
