package mcp

import (
	"context"

	"github.com/custodia-labs/vantage-cli/internal/core/domain"
	"github.com/custodia-labs/vantage-cli/internal/core/ports/driving"
)

// mockAnalysisService is a mock implementation of driving.AnalysisService.
type mockAnalysisService struct {
	record domain.AnswerRecord
	asked  []domain.Question
}

func (m *mockAnalysisService) Ask(_ context.Context, question domain.Question) domain.AnswerRecord {
	m.asked = append(m.asked, question)
	rec := m.record
	rec.QuestionID = question.ID
	rec.Question = question.Text
	return rec
}

func (m *mockAnalysisService) Analyze(_ context.Context, _ []domain.Question) *domain.Report {
	return &domain.Report{Results: map[string]domain.AnswerRecord{}}
}

func (m *mockAnalysisService) SetProgress(_ driving.ProgressFunc) {}

// mockIngestionService is a mock implementation of driving.IngestionService.
type mockIngestionService struct {
	status *driving.IndexStatus
	err    error
}

func (m *mockIngestionService) Ingest(_ context.Context, _ driving.IngestOptions) (*driving.IngestResult, error) {
	return &driving.IngestResult{}, m.err
}

func (m *mockIngestionService) Status(_ context.Context) (*driving.IndexStatus, error) {
	return m.status, m.err
}
