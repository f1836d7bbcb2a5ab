// Package mcp provides an MCP (Model Context Protocol) server adapter for Vantage.
// It lets AI assistants ask questions about the indexed outlook documents.
package mcp

import "errors"

// ErrMissingAnalysisService is returned when the analysis service is not provided.
var ErrMissingAnalysisService = errors.New("mcp: analysis service is required")
