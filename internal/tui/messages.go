package tui

import "github.com/Veraticus/churn/internal/model"

// predictionMsg carries the outcome of scoring a submitted form.
type predictionMsg struct {
	err        error
	prediction *model.Prediction
}
