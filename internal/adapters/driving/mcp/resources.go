package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/vantage-cli/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for Vantage resources.
	uriScheme = "vantage://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "questions",
		Name:        "questions",
		Description: "The predefined analysis questions",
		MIMEType:    "application/json",
	}, s.handleQuestionsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "questions/{questionId}",
		Name:        "question",
		Description: "Full text of one predefined question",
		MIMEType:    "text/plain",
	}, s.handleQuestionResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "index",
		Name:        "index",
		Description: "Chunk counts per document in the vector index",
		MIMEType:    "application/json",
	}, s.handleIndexResource)
}

// handleQuestionsResource returns the predefined questions.
func (s *Server) handleQuestionsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(questionOutputs(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling questions: %w", err)
	}
	return jsonResult(req.Params.URI, data), nil
}

// handleQuestionResource returns the text of a single predefined question.
func (s *Server) handleQuestionResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract questionId from URI: vantage://questions/{questionId}
	id := extractQuestionID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	q, ok := domain.FindQuestion(strings.ToUpper(id))
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     q.Text,
		}},
	}, nil
}

// handleIndexResource reports what the vector index holds.
func (s *Server) handleIndexResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type documentInfo struct {
		ID     string `json:"id"`
		Label  string `json:"label"`
		Chunks int    `json:"chunks"`
	}
	type indexInfo struct {
		Available bool           `json:"available"`
		Total     int            `json:"total_chunks"`
		Documents []documentInfo `json:"documents"`
	}

	info := indexInfo{Documents: []documentInfo{}}
	if s.ports.Ingestion != nil {
		status, err := s.ports.Ingestion.Status(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading index status: %w", err)
		}
		info.Available = true
		info.Total = status.Total
		for _, id := range domain.AllDocuments() {
			info.Documents = append(info.Documents, documentInfo{
				ID:     id.String(),
				Label:  id.Label(),
				Chunks: status.Chunks[id],
			})
		}
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling index status: %w", err)
	}
	return jsonResult(req.Params.URI, data), nil
}

func jsonResult(uri string, data []byte) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}
}

// extractQuestionID extracts the question ID from a URI like vantage://questions/{questionId}.
func extractQuestionID(uri string) string {
	const prefix = uriScheme + "questions/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
