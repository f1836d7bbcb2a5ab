package driving

import (
	"context"

	"github.com/custodia-labs/vantage-cli/internal/core/domain"
)

// ProgressFunc observes question state transitions during a run.
// It is called synchronously from the orchestrator.
type ProgressFunc func(questionID string, status domain.QuestionStatus)

// AnalysisService runs questions through the route, retrieve and synthesize pipeline.
type AnalysisService interface {
	// Ask processes one question to a terminal state.
	// Step failures are recorded on the returned record, never returned as errors.
	Ask(ctx context.Context, question domain.Question) domain.AnswerRecord

	// Analyze processes questions sequentially and assembles a report.
	// One question's failure never aborts the batch.
	Analyze(ctx context.Context, questions []domain.Question) *domain.Report

	// SetProgress registers an observer for state transitions. Nil disables it.
	SetProgress(fn ProgressFunc)
}
