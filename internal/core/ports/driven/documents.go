package driven

import (
	"context"
	"io"

	"github.com/custodia-labs/resumerag/internal/core/domain"
)

// DocumentStore loads resume documents from a directory.
type DocumentStore interface {
	// Load decodes every supported file. Unsupported or undecodable files
	// are reported in the result's Skipped list rather than as an error.
	Load(ctx context.Context) (*domain.LoadResult, error)

	// Count returns the number of supported files without decoding them.
	Count() int

	// List returns the supported filenames, sorted, without decoding them.
	List() []string

	// Add writes a new document. The extension must be supported.
	Add(name string, r io.Reader) (string, error)

	// Remove deletes a document by filename.
	Remove(name string) error

	// Root returns the documents directory.
	Root() string
}

// Normaliser decodes one file format into raw documents.
type Normaliser interface {
	// Extensions returns the lower-case extensions this normaliser handles.
	Extensions() []string

	// FileType returns the file type recorded in document metadata.
	FileType() domain.FileType

	// Normalise decodes a file. Paged formats may return one document per page.
	Normalise(ctx context.Context, file *domain.SourceFile) ([]domain.RawDocument, error)
}

// Chunker splits raw documents into chunks.
type Chunker interface {
	// Split chunks every document, preserving order within each document.
	Split(docs []domain.RawDocument) []domain.Chunk

	// ChunkSize returns the configured maximum chunk length.
	ChunkSize() int

	// Overlap returns the configured overlap between adjacent chunks.
	Overlap() int
}

// DocumentWatcher reports changes to the documents directory.
type DocumentWatcher interface {
	// Watch streams changes to supported files until ctx is cancelled.
	// The returned channel is closed when watching stops.
	Watch(ctx context.Context) (<-chan domain.DocumentChange, error)
}
