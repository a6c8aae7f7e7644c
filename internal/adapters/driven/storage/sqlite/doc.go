// Package sqlite provides a SQLite-based implementation of the ragkit
// storage ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements both store interfaces
// through a single database connection:
//
//   - ProjectStore: Project persistence
//   - ChunkStore: Document, chunk and embedding persistence
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Embeddings are stored as little-endian float32 blobs alongside their dimension.
//
// # Data Location
//
// By default, the database is stored at ~/.ragkit/data/rag.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode. PutChunks and PutDocumentWithChunks each run in a
// single transaction, so readers see either a document's full chunk set or
// none of it.
package sqlite
