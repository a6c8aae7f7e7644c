// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - EmbeddingProvider: Generates vector embeddings for text (OpenAI, Ollama)
//   - ProviderResolver: Resolves a provider id to an EmbeddingProvider
//   - ChunkStore: Document, chunk and vector persistence
//   - ProjectStore: Project persistence
//   - ConfigStore: Application configuration
//   - PostProcessor: Splits a document into chunks
//   - Normaliser, NormaliserRegistry: Extract text from files
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
