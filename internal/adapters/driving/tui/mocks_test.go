package tui

import (
	"context"

	"github.com/custodia-labs/vantage-cli/internal/core/domain"
	"github.com/custodia-labs/vantage-cli/internal/core/ports/driving"
)

// MockAnalysisService walks each question through a scripted outcome.
type MockAnalysisService struct {
	progress driving.ProgressFunc
	fail     map[string]bool
}

func (m *MockAnalysisService) Ask(_ context.Context, q domain.Question) domain.AnswerRecord {
	rec := domain.AnswerRecord{QuestionID: q.ID, Title: q.Title, Question: q.Text}
	for _, status := range []domain.QuestionStatus{domain.StatusPending, domain.StatusRouted} {
		m.emit(q.ID, status)
	}
	if m.fail[q.ID] {
		rec.Status = domain.StatusFailed
		rec.ErrorKind = domain.KindRetrieval
	} else {
		m.emit(q.ID, domain.StatusRetrieved)
		rec.Status = domain.StatusAnswered
		rec.Answer = "answer to " + q.ID
	}
	m.emit(q.ID, rec.Status)
	return rec
}

func (m *MockAnalysisService) Analyze(ctx context.Context, questions []domain.Question) *domain.Report {
	report := &domain.Report{Results: make(map[string]domain.AnswerRecord)}
	for _, q := range questions {
		report.Results[q.ID] = m.Ask(ctx, q)
		report.Order = append(report.Order, q.ID)
	}
	return report
}

func (m *MockAnalysisService) SetProgress(fn driving.ProgressFunc) {
	m.progress = fn
}

func (m *MockAnalysisService) emit(id string, status domain.QuestionStatus) {
	if m.progress != nil {
		m.progress(id, status)
	}
}
