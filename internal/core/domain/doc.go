// Package domain defines the core business entities for resumerag.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawDocument: Text decoded from one resume file (or one PDF page)
//   - Chunk: A bounded segment of a RawDocument, the unit of retrieval
//   - IndexedVector: A chunk paired with its embedding
//   - SearchHit: A chunk scored against a query
//   - Answer: A generated answer with its source filenames
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
