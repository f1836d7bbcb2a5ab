package domain

import (
	"fmt"
	"strings"
)

// Route is the routing category for a question.
// It is a closed set: any value outside the three tags is rejected.
type Route string

// Available routes.
const (
	// RouteForecast sends the question to the forecast document only.
	RouteForecast Route = "forecast"

	// RouteMidyear sends the question to the mid-year document only.
	RouteMidyear Route = "midyear"

	// RouteBoth queries both documents and merges the results.
	RouteBoth Route = "both"
)

// AllRoutes returns every valid route.
func AllRoutes() []Route {
	return []Route{RouteForecast, RouteMidyear, RouteBoth}
}

// ParseRoute validates a raw category string returned by a language model.
func ParseRoute(s string) (Route, error) {
	r := Route(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("%w: unknown route %q", ErrInvalidInput, s)
	}
	return r, nil
}

// IsValid returns true if the route is recognised.
func (r Route) IsValid() bool {
	switch r {
	case RouteForecast, RouteMidyear, RouteBoth:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (r Route) String() string {
	return string(r)
}

// Documents returns the documents a route queries, in canonical order.
func (r Route) Documents() []DocumentID {
	switch r {
	case RouteForecast:
		return []DocumentID{DocumentForecast}
	case RouteMidyear:
		return []DocumentID{DocumentMidyear}
	case RouteBoth:
		return AllDocuments()
	default:
		return nil
	}
}

// IsComparison returns true when the answer must separate forecast from reality.
func (r Route) IsComparison() bool {
	return r == RouteBoth
}

// RoutingDecision is the router's classification plus its rationale.
type RoutingDecision struct {
	// Route is the chosen category.
	Route Route `json:"document_type"`

	// Rationale is the model's short explanation.
	Rationale string `json:"reasoning"`
}
