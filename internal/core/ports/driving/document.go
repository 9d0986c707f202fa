package driving

import "io"

// DocumentService manages the files in the documents directory.
type DocumentService interface {
	// List returns the supported filenames.
	List() []string

	// Add stores a new document after validating its extension.
	// It returns the path the document was written to.
	Add(name string, r io.Reader) (string, error)

	// Remove deletes a document.
	Remove(name string) error

	// Open opens a document in the system's default application.
	Open(name string) error

	// Dir returns the documents directory.
	Dir() string
}
