package services

import (
	"context"
	"time"

	"github.com/custodia-labs/vantage-cli/internal/core/domain"
	"github.com/custodia-labs/vantage-cli/internal/core/ports/driving"
	"github.com/custodia-labs/vantage-cli/internal/logger"
)

// Ensure AnalysisService implements the interface.
var _ driving.AnalysisService = (*AnalysisService)(nil)

// AnalysisConfig describes the run for report metadata and sets retrieval depth.
type AnalysisConfig struct {
	// TopK is the number of matches retrieved per document.
	TopK int

	// Model is the chat model name.
	Model string

	// EmbeddingModel is the embedding model name.
	EmbeddingModel string

	// Pipeline holds the chunking parameters the index was built with.
	Pipeline domain.PipelineSettings
}

// AnalysisService drives each question through route, retrieve and
// synthesize. A failed step ends that question only.
type AnalysisService struct {
	router      driving.Router
	retriever   driving.Retriever
	synthesizer driving.Synthesizer
	cfg         AnalysisConfig
	progress    driving.ProgressFunc
	now         func() time.Time
}

// NewAnalysisService creates a new analysis orchestrator.
func NewAnalysisService(
	router driving.Router,
	retriever driving.Retriever,
	synthesizer driving.Synthesizer,
	cfg AnalysisConfig,
) *AnalysisService {
	if cfg.TopK <= 0 {
		cfg.TopK = domain.DefaultTopK
	}
	return &AnalysisService{
		router:      router,
		retriever:   retriever,
		synthesizer: synthesizer,
		cfg:         cfg,
		now:         time.Now,
	}
}

// SetProgress registers an observer for state transitions.
func (s *AnalysisService) SetProgress(fn driving.ProgressFunc) {
	s.progress = fn
}

// Ask processes one question to a terminal state.
func (s *AnalysisService) Ask(ctx context.Context, question domain.Question) domain.AnswerRecord {
	logger.Section("Question " + question.ID)
	logger.Debug("Text: %.100s", question.Text)

	rec := domain.AnswerRecord{
		QuestionID: question.ID,
		Title:      question.Title,
		Question:   question.Text,
		Citations:  []domain.Citation{},
	}
	s.transition(&rec, domain.StatusPending)

	decision, err := s.router.Route(ctx, question.Text)
	if err != nil {
		return s.fail(rec, err, domain.KindRouting)
	}
	rec.Routing = &decision
	s.transition(&rec, domain.StatusRouted)

	matches, err := s.retriever.Retrieve(ctx, question.Text, decision, s.cfg.TopK)
	if err != nil {
		return s.fail(rec, err, domain.KindRetrieval)
	}
	rec.RetrievedCount = len(matches)
	s.transition(&rec, domain.StatusRetrieved)

	synthesis, err := s.synthesizer.Synthesize(ctx, question.Text, decision, matches)
	if err != nil {
		return s.fail(rec, err, domain.KindSynthesis)
	}
	rec.Answer = synthesis.Answer
	if synthesis.Citations != nil {
		rec.Citations = synthesis.Citations
	}
	s.transition(&rec, domain.StatusAnswered)

	return rec
}

// Analyze processes questions in order and assembles the report.
func (s *AnalysisService) Analyze(ctx context.Context, questions []domain.Question) *domain.Report {
	report := &domain.Report{
		Results: make(map[string]domain.AnswerRecord, len(questions)),
		Order:   make([]string, 0, len(questions)),
	}

	failed := 0
	for _, q := range questions {
		rec := s.Ask(ctx, q)
		if rec.Failed() {
			failed++
		}
		if _, dup := report.Results[q.ID]; !dup {
			report.Order = append(report.Order, q.ID)
		}
		report.Results[q.ID] = rec
	}

	report.Metadata = domain.RunMetadata{
		GeneratedAt:          s.now(),
		Model:                s.cfg.Model,
		EmbeddingModel:       s.cfg.EmbeddingModel,
		Chunker:              s.cfg.Pipeline.Chunker.String(),
		ChunkSize:            s.cfg.Pipeline.ChunkSize,
		ChunkOverlap:         s.cfg.Pipeline.ChunkOverlap,
		BreakpointPercentile: s.cfg.Pipeline.BreakpointPercentile,
		TopK:                 s.cfg.TopK,
		QuestionCount:        len(questions),
		FailedCount:          failed,
	}

	logger.Info("Analysis complete: %d questions, %d failed", len(questions), failed)
	return report
}

// fail marks the record failed. kind names the step when the error carries
// no pipeline kind of its own.
func (s *AnalysisService) fail(rec domain.AnswerRecord, err error, kind string) domain.AnswerRecord {
	rec.ErrorKind = domain.ErrorKind(err)
	if rec.ErrorKind == "" {
		rec.ErrorKind = kind
	}
	rec.Error = err.Error()
	rec.Answer = ""
	logger.Warn("Question %s failed (%s): %v", rec.QuestionID, rec.ErrorKind, err)
	s.transition(&rec, domain.StatusFailed)
	return rec
}

func (s *AnalysisService) transition(rec *domain.AnswerRecord, status domain.QuestionStatus) {
	rec.Status = status
	logger.Debug("%s -> %s", rec.QuestionID, status)
	if s.progress != nil {
		s.progress(rec.QuestionID, status)
	}
}
