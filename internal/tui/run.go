// Package tui implements the interactive churn prediction form.
package tui

import (
	"context"
	"fmt"
	"io"

	"github.com/Veraticus/churn/internal/model"
	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the form until the user quits and returns every prediction made.
func Run(ctx context.Context, in io.Reader, out io.Writer, opts ...Option) ([]*model.Prediction, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Predictor == nil {
		return nil, errNoPredictor
	}

	programOpts := []tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	}
	if cfg.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}

	final, err := tea.NewProgram(newModel(ctx, cfg), programOpts...).Run()
	if m, ok := final.(Model); ok {
		if err != nil {
			return m.Predictions(), fmt.Errorf("TUI error: %w", err)
		}
		return m.Predictions(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("TUI error: %w", err)
	}
	return nil, nil
}
