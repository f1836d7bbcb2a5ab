package driven

import (
	"context"

	"github.com/custodia-labs/vantage-cli/internal/core/domain"
)

// DocumentExtractor turns a source file into page-numbered text.
type DocumentExtractor interface {
	// Extract returns the non-empty pages of the file in order.
	Extract(ctx context.Context, path string) ([]domain.Page, error)

	// SupportedExtensions lists the file extensions this extractor reads (e.g. ".pdf").
	SupportedExtensions() []string
}
