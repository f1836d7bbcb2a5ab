// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/vantage-cli/internal/core/domain"
)

// StatusChanged is sent when a question moves to a new lifecycle state.
type StatusChanged struct {
	QuestionID string
	Status     domain.QuestionStatus
}

// RunCompleted carries the finished report back to the model.
type RunCompleted struct {
	Report *domain.Report
}

// Quit signals the application should exit.
type Quit struct{}
