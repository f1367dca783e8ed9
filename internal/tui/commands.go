package tui

import (
	"context"

	"github.com/Veraticus/churn/internal/model"
	tea "github.com/charmbracelet/bubbletea"
)

// predictCmd scores raw off the UI goroutine.
func predictCmd(ctx context.Context, p Predictor, raw model.RawRecord, source model.Source) tea.Cmd {
	return func() tea.Msg {
		prediction, err := p.Predict(ctx, raw, source)
		return predictionMsg{prediction: prediction, err: err}
	}
}
