// Package report writes analysis reports to timestamped JSON files.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/vantage-cli/internal/core/domain"
	"github.com/custodia-labs/vantage-cli/internal/core/ports/driven"
)

// Ensure JSONWriter implements the interface.
var _ driven.ReportWriter = (*JSONWriter)(nil)

// filePrefix and timeLayout form analysis_results_YYYYMMDD_HHMMSS.json.
const (
	filePrefix = "analysis_results_"
	timeLayout = "20060102_150405"
)

// JSONWriter writes reports as indented JSON into an output directory.
type JSONWriter struct {
	dir string
	now func() time.Time
}

// NewJSONWriter creates a writer for the given directory. The directory is
// created on first write.
func NewJSONWriter(dir string) *JSONWriter {
	return &JSONWriter{dir: dir, now: time.Now}
}

// Dir returns the output directory.
func (w *JSONWriter) Dir() string {
	return w.dir
}

// FileName returns the file name used for a report generated at t.
func FileName(t time.Time) string {
	return filePrefix + t.Format(timeLayout) + ".json"
}

// Write stores the report and returns the file path. The file is written to a
// temporary name first and renamed, so readers never see a partial report.
func (w *JSONWriter) Write(ctx context.Context, report *domain.Report) (string, error) {
	if report == nil {
		return "", fmt.Errorf("%w: nil report", domain.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	generated := report.Metadata.GeneratedAt
	if generated.IsZero() {
		generated = w.now()
	}
	path := filepath.Join(w.dir, FileName(generated))

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(w.dir, ".report-*.json")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close report: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return "", fmt.Errorf("rename report: %w", err)
	}

	return path, nil
}
