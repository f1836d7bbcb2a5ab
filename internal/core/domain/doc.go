// Package domain defines the core business entities for Vantage.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A source PDF identified as the forecast or the mid-year review
//   - Chunk: A retrievable passage with page provenance
//   - RoutingDecision: Which document(s) a question concerns
//   - RetrievedMatch: A chunk scored against one question
//   - AnswerRecord: The outcome of running one question through the pipeline
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
