// Package sqlite provides a SQLite-backed implementation of driven.VectorStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Each chunk row holds the passage text,
// its document identifier and page number, and the embedding as a little-endian
// float32 BLOB.
//
// # Querying
//
// Document filters are applied in SQL. Cosine similarity is computed in Go over
// the filtered rows, which is adequate for the two source documents this tool
// indexes.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.vantage/index/vectors.db. The CLI
// passes the configured store directory instead.
package sqlite
