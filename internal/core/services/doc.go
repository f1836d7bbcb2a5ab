// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters): the router, retriever and
// synthesizer steps, the analysis orchestrator that chains them,
// ingestion of the source documents and settings management.
package services
