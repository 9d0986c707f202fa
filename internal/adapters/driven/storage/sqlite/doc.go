// Package sqlite provides the persisted vector index.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. The whole index is a single database file
// holding the index metadata and one row per chunk with its embedding.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at vectorstore/index.db.
//
// # Thread Safety
//
// Searches read an immutable in-memory snapshot, so they never observe a
// partially built index. Builds are serialised; a concurrent build fails fast.
// The database file is written under a temporary name and renamed into place.
package sqlite
