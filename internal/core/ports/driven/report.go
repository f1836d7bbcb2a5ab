package driven

import (
	"context"

	"github.com/custodia-labs/vantage-cli/internal/core/domain"
)

// ReportWriter persists analysis reports.
type ReportWriter interface {
	// Write stores the report and returns its location.
	Write(ctx context.Context, report *domain.Report) (string, error)
}
