package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/vantage-cli/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	QuestionID string `json:"question_id,omitempty" jsonschema:"id of a predefined question (Q1-Q5)"`
	Question   string `json:"question,omitempty" jsonschema:"free-text question about the 2025 outlook documents"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	ID             string            `json:"id"`
	Status         string            `json:"status"`
	Route          string            `json:"document_type,omitempty"`
	Answer         string            `json:"answer,omitempty"`
	Citations      []domain.Citation `json:"citations"`
	RetrievedCount int               `json:"retrieved_chunks_count"`
	ErrorKind      string            `json:"error_kind,omitempty"`
	Error          string            `json:"error,omitempty"`
}

// ListQuestionsInput is the (empty) input schema for the list_questions tool.
type ListQuestionsInput struct{}

// ListQuestionsOutput is the output schema for the list_questions tool.
type ListQuestionsOutput struct {
	Questions []QuestionOutput `json:"questions"`
}

// QuestionOutput describes one predefined question.
type QuestionOutput struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the Outlook 2025 and Mid-Year Outlook 2025 documents with page citations",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_questions",
		Description: "List the predefined analysis questions",
	}, s.handleListQuestions)
}

// handleAsk handles the ask tool invocation. Exactly one of question_id and
// question must be set. A failed pipeline step is reported in the output,
// not as a tool error.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	question, err := resolveQuestion(input)
	if err != nil {
		return nil, AskOutput{}, err
	}

	rec := s.ports.Analysis.Ask(ctx, question)

	output := AskOutput{
		ID:             rec.QuestionID,
		Status:         rec.Status.String(),
		Answer:         rec.Answer,
		Citations:      rec.Citations,
		RetrievedCount: rec.RetrievedCount,
		ErrorKind:      rec.ErrorKind,
		Error:          rec.Error,
	}
	if output.Citations == nil {
		output.Citations = []domain.Citation{}
	}
	if rec.Routing != nil {
		output.Route = rec.Routing.Route.String()
	}

	return nil, output, nil
}

// handleListQuestions handles the list_questions tool invocation.
func (s *Server) handleListQuestions(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ListQuestionsInput,
) (*mcp.CallToolResult, ListQuestionsOutput, error) {
	return nil, ListQuestionsOutput{Questions: questionOutputs()}, nil
}

func resolveQuestion(input AskInput) (domain.Question, error) {
	id := strings.TrimSpace(input.QuestionID)
	text := strings.TrimSpace(input.Question)

	switch {
	case id != "" && text != "":
		return domain.Question{}, errors.New("set either question_id or question, not both")
	case id != "":
		q, ok := domain.FindQuestion(strings.ToUpper(id))
		if !ok {
			return domain.Question{}, fmt.Errorf("question %q: %w", id, domain.ErrNotFound)
		}
		return q, nil
	case text != "":
		return domain.Question{ID: domain.AdHocQuestionID, Text: text}, nil
	default:
		return domain.Question{}, fmt.Errorf("%w: question_id or question is required", domain.ErrInvalidInput)
	}
}

func questionOutputs() []QuestionOutput {
	questions := domain.DefaultQuestions()
	out := make([]QuestionOutput, len(questions))
	for i, q := range questions {
		out[i] = QuestionOutput{ID: q.ID, Title: q.Title, Text: q.Text}
	}
	return out
}
