package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/custodia-labs/vantage-cli/internal/core/domain"
	"github.com/custodia-labs/vantage-cli/internal/core/ports/driving"
)

// mockAnalysisService answers every question unless it is listed in fail.
type mockAnalysisService struct {
	progress driving.ProgressFunc
	asked    []domain.Question
	fail     map[string]bool
}

func (m *mockAnalysisService) Ask(_ context.Context, q domain.Question) domain.AnswerRecord {
	m.asked = append(m.asked, q)
	rec := domain.AnswerRecord{
		QuestionID: q.ID,
		Title:      q.Title,
		Question:   q.Text,
		Routing:    &domain.RoutingDecision{Route: domain.RouteBoth},
		Citations:  []domain.Citation{},
	}
	m.emit(q.ID, domain.StatusPending)
	m.emit(q.ID, domain.StatusRouted)
	if m.fail[q.ID] {
		rec.Status = domain.StatusFailed
		rec.ErrorKind = domain.KindSynthesis
		rec.Error = "synthesis failed: model unavailable"
	} else {
		m.emit(q.ID, domain.StatusRetrieved)
		rec.Status = domain.StatusAnswered
		rec.Answer = "Answer for " + q.ID
		rec.Citations = []domain.Citation{{Document: domain.DocumentMidyear, Page: 7, Excerpt: "Tariffs weighed on sentiment"}}
	}
	m.emit(q.ID, rec.Status)
	return rec
}

func (m *mockAnalysisService) Analyze(ctx context.Context, questions []domain.Question) *domain.Report {
	report := &domain.Report{Results: make(map[string]domain.AnswerRecord)}
	for _, q := range questions {
		rec := m.Ask(ctx, q)
		report.Results[q.ID] = rec
		report.Order = append(report.Order, q.ID)
		if rec.Failed() {
			report.Metadata.FailedCount++
		}
	}
	report.Metadata.QuestionCount = len(questions)
	return report
}

func (m *mockAnalysisService) SetProgress(fn driving.ProgressFunc) {
	m.progress = fn
}

func (m *mockAnalysisService) emit(id string, status domain.QuestionStatus) {
	if m.progress != nil {
		m.progress(id, status)
	}
}

// mockIngestionService records ingest calls and serves a fixed index size.
type mockIngestionService struct {
	chunks    int
	ingestErr error
	statusErr error
	calls     []driving.IngestOptions
}

func (m *mockIngestionService) Ingest(_ context.Context, opts driving.IngestOptions) (*driving.IngestResult, error) {
	m.calls = append(m.calls, opts)
	if m.ingestErr != nil {
		return nil, m.ingestErr
	}
	if m.chunks > 0 && opts.SkipIfPresent && !opts.Force {
		return &driving.IngestResult{Skipped: true, TotalChunks: m.chunks}, nil
	}
	m.chunks = 30
	return &driving.IngestResult{
		Documents: []driving.IngestedDocument{
			{ID: domain.DocumentForecast, Title: "outlook-2025", Pages: 12, Chunks: 18},
			{ID: domain.DocumentMidyear, Title: "mid-year-outlook-2025", Pages: 9, Chunks: 12},
		},
		TotalChunks: m.chunks,
	}, nil
}

func (m *mockIngestionService) Status(_ context.Context) (*driving.IndexStatus, error) {
	if m.statusErr != nil {
		return nil, m.statusErr
	}
	chunks := map[domain.DocumentID]int{}
	if m.chunks > 0 {
		chunks[domain.DocumentForecast] = m.chunks * 3 / 5
		chunks[domain.DocumentMidyear] = m.chunks - chunks[domain.DocumentForecast]
	}
	return &driving.IndexStatus{Chunks: chunks, Total: m.chunks}, nil
}

// mockReportWriter captures written reports.
type mockReportWriter struct {
	reports []*domain.Report
	err     error
}

func (m *mockReportWriter) Write(_ context.Context, report *domain.Report) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.reports = append(m.reports, report)
	return "outputs/analysis_results_20250701_120000.json", nil
}

// mockSettingsService stores values in memory.
type mockSettingsService struct {
	settings    domain.AppSettings
	values      map[string]string
	validateErr error
	pingErr     error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{
		settings: domain.DefaultAppSettings(),
		values:   make(map[string]string),
	}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if !strings.Contains(key, ".") {
		return errors.New("unknown key")
	}
	if value == "" {
		delete(m.values, key)
		return nil
	}
	m.values[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"llm.model", "llm.provider", "pipeline.top_k"}
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) ValidateEmbeddingConfig() error {
	return m.pingErr
}

func (m *mockSettingsService) ValidateLLMConfig() error {
	return m.pingErr
}

// testServices bundles the mocks installed by setupTestServices.
type testServices struct {
	analysis  *mockAnalysisService
	ingestion *mockIngestionService
	reports   *mockReportWriter
	settings  *mockSettingsService
}

// setupTestServices installs mock services and returns a cleanup function.
func setupTestServices() (*testServices, func()) {
	oldServices, oldBuilder, oldSettings := services, buildServices, settingsService

	ts := &testServices{
		analysis:  &mockAnalysisService{},
		ingestion: &mockIngestionService{},
		reports:   &mockReportWriter{},
		settings:  newMockSettingsService(),
	}
	services = &Services{
		Analysis:  ts.analysis,
		Ingestion: ts.ingestion,
		Reports:   ts.reports,
	}
	buildServices = nil
	settingsService = ts.settings

	return ts, func() {
		services, buildServices, settingsService = oldServices, oldBuilder, oldSettings
	}
}

// executeCommand runs the root command with fresh flag values.
func executeCommand(args ...string) (string, error) {
	return executeCommandWithInput("", args...)
}

// executeCommandWithInput runs the root command with input on stdin.
func executeCommandWithInput(input string, args ...string) (string, error) {
	verbose = false
	ingestFlag, reingestFlag, analyzeFlag, allFlag = false, false, false, false
	questionFlag = ""
	overrides = Overrides{}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}
