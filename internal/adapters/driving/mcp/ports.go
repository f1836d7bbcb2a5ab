package mcp

import (
	"github.com/custodia-labs/vantage-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Analysis answers questions over the index.
	Analysis driving.AnalysisService

	// Ingestion reports the index contents.
	Ingestion driving.IngestionService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Analysis == nil {
		return ErrMissingAnalysisService
	}
	// Ingestion is optional; the index resource reports it as unavailable
	return nil
}
