package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/vantage-cli/internal/core/domain"
	"github.com/custodia-labs/vantage-cli/internal/core/ports/driven"
	"github.com/custodia-labs/vantage-cli/internal/core/ports/driving"
	"github.com/custodia-labs/vantage-cli/internal/logger"
)

// Ensure RouterService implements the interface.
var _ driving.Router = (*RouterService)(nil)

// routeSchemaName identifies the routing schema to the model provider.
const routeSchemaName = "route_decision"

// routeReply is the structured reply the router asks for.
type routeReply struct {
	Route     string `json:"route"`
	Rationale string `json:"rationale"`
}

// RouterService classifies questions with one structured chat call.
type RouterService struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewRouterService creates a new router service.
func NewRouterService(llm driven.LLMService, prompts driven.PromptStore) *RouterService {
	return &RouterService{
		llm:     llm,
		prompts: prompts,
	}
}

// RouteSchema returns the JSON schema the routing reply must match.
func RouteSchema() *driven.ResponseSchema {
	routes := make([]any, 0, len(domain.AllRoutes()))
	for _, r := range domain.AllRoutes() {
		routes = append(routes, r.String())
	}

	return &driven.ResponseSchema{
		Name:        routeSchemaName,
		Description: "Which document(s) to search for the question",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"route": map[string]any{
					"type":        "string",
					"enum":        routes,
					"description": "forecast, midyear or both",
				},
				"rationale": map[string]any{
					"type":        "string",
					"description": "One sentence explaining the choice",
				},
			},
			"required":             []any{"route", "rationale"},
			"additionalProperties": false,
		},
	}
}

// Route returns the routing decision for question. It never guesses: any
// failure, including a category outside the schema, is a routing error.
func (s *RouterService) Route(ctx context.Context, question string) (domain.RoutingDecision, error) {
	logger.Section("Routing")

	question = strings.TrimSpace(question)
	if question == "" {
		return domain.RoutingDecision{}, fmt.Errorf("%w: empty question", domain.ErrRouting)
	}
	if s.llm == nil {
		return domain.RoutingDecision{}, fmt.Errorf("%w: %w", domain.ErrRouting, domain.ErrLLMUnavailable)
	}

	system, err := s.prompts.Load(driven.PromptRouterSystem)
	if err != nil {
		return domain.RoutingDecision{}, fmt.Errorf("%w: load prompt: %w", domain.ErrRouting, err)
	}
	user, err := s.prompts.Load(driven.PromptRouterUser)
	if err != nil {
		return domain.RoutingDecision{}, fmt.Errorf("%w: load prompt: %w", domain.ErrRouting, err)
	}

	messages := []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: system},
		{Role: driven.RoleUser, Content: fmt.Sprintf(user, question)},
	}

	reply, err := s.llm.Chat(ctx, messages, driven.ChatOptions{
		Temperature: 0,
		Schema:      RouteSchema(),
	})
	if err != nil {
		logger.Warn("Router call failed: %v", err)
		return domain.RoutingDecision{}, fmt.Errorf("%w: %w", domain.ErrRouting, err)
	}
	logger.Debug("Router reply: %s", reply)

	decision, err := parseRouteReply(reply)
	if err != nil {
		logger.Warn("Router reply rejected: %v", err)
		return domain.RoutingDecision{}, fmt.Errorf("%w: %w", domain.ErrRouting, err)
	}

	logger.Info("Route: %s (%s)", decision.Route, decision.Rationale)
	return decision, nil
}

// parseRouteReply decodes and validates a routing reply. Text around the
// JSON object, such as a markdown fence, is ignored.
func parseRouteReply(reply string) (domain.RoutingDecision, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end < start {
		return domain.RoutingDecision{}, fmt.Errorf("%w: no JSON object in reply", domain.ErrInvalidInput)
	}

	var parsed routeReply
	if err := json.Unmarshal([]byte(reply[start:end+1]), &parsed); err != nil {
		return domain.RoutingDecision{}, fmt.Errorf("%w: decode reply: %w", domain.ErrInvalidInput, err)
	}

	route, err := domain.ParseRoute(parsed.Route)
	if err != nil {
		return domain.RoutingDecision{}, err
	}

	return domain.RoutingDecision{
		Route:     route,
		Rationale: strings.TrimSpace(parsed.Rationale),
	}, nil
}
