package tui

import (
	"context"
	"time"

	"github.com/Veraticus/churn/internal/model"
	"github.com/Veraticus/churn/internal/tui/themes"
)

// Predictor scores a raw record.
type Predictor interface {
	Predict(ctx context.Context, raw model.RawRecord, source model.Source) (*model.Prediction, error)
}

// Config holds TUI configuration.
type Config struct {
	Predictor   Predictor
	Defaults    map[string]string
	Theme       themes.Theme
	Source      model.Source
	Notice      string
	Width       int
	Height      int
	ShowDetails bool
	AltScreen   bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:     themes.Default,
		Defaults:  model.DefaultValues(time.Now()),
		Source:    model.SourceForm,
		Width:     80,
		Height:    24,
		AltScreen: true,
	}
}

// WithPredictor sets the predictor that scores submitted forms.
func WithPredictor(p Predictor) Option {
	return func(c *Config) {
		c.Predictor = p
	}
}

// WithDefaults prefills the form. Fields missing from values keep the
// standard defaults.
func WithDefaults(values map[string]string) Option {
	return func(c *Config) {
		for k, v := range values {
			c.Defaults[k] = v
		}
	}
}

// WithSource sets the source recorded on predictions.
func WithSource(source model.Source) Option {
	return func(c *Config) {
		c.Source = source
	}
}

// WithNotice shows a line above the form, e.g. where prefilled values came from.
func WithNotice(notice string) Option {
	return func(c *Config) {
		c.Notice = notice
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithDetails shows the derived feature vector with each result.
func WithDetails(enabled bool) Option {
	return func(c *Config) {
		c.ShowDetails = enabled
	}
}

// WithAltScreen controls whether the form takes over the whole terminal.
func WithAltScreen(enabled bool) Option {
	return func(c *Config) {
		c.AltScreen = enabled
	}
}
