// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentExtractor: Page-numbered text from source PDFs
//   - Chunker: Splits pages into retrievable passages
//   - VectorStore: Persisted embeddings with filtered similarity search
//   - EmbeddingService: Generates vector embeddings for chunks and questions
//   - LLMService: Chat completion for routing and synthesis
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
//   - PromptStore: User-editable prompt templates. Services fall back to built-in prompts.
//   - ReportWriter: Persists analysis reports. Without it results are only rendered.
//   - AIConfigValidator: Connectivity checks for configured providers.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
