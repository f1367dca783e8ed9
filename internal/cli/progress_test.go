package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressReporter(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(&buf, 3, "Scoring customers...")
	report := ProgressReporter(bar)

	report(1, 3)
	report(3, 3)

	assert.True(t, bar.IsFinished())
	assert.Contains(t, buf.String(), "Scoring customers...")
}
