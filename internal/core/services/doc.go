// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// RAGService composes the chunker, the embedding client, the ranker and
// the chunk store into the ingestion and retrieval pipelines.
package services
