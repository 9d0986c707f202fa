package domain

import (
	"path/filepath"
	"strings"
)

// FileType identifies the decoder family of a resume document.
type FileType string

// Supported file types.
const (
	FileTypePDF      FileType = "pdf"
	FileTypeText     FileType = "txt"
	FileTypeMarkdown FileType = "markdown"
)

// String returns the string representation.
func (t FileType) String() string {
	return string(t)
}

// IsValid returns true if the file type is recognised.
func (t FileType) IsValid() bool {
	switch t {
	case FileTypePDF, FileTypeText, FileTypeMarkdown:
		return true
	default:
		return false
	}
}

// extensionTypes maps lower-case file extensions to their file type.
var extensionTypes = map[string]FileType{
	".pdf":      FileTypePDF,
	".txt":      FileTypeText,
	".md":       FileTypeMarkdown,
	".markdown": FileTypeMarkdown,
}

// SupportedExtensions returns the accepted document extensions in display order.
func SupportedExtensions() []string {
	return []string{".pdf", ".txt", ".md", ".markdown"}
}

// FileTypeForExtension returns the file type for an extension such as ".md".
// The lookup is case-insensitive. The boolean is false for unsupported extensions.
func FileTypeForExtension(ext string) (FileType, bool) {
	t, ok := extensionTypes[strings.ToLower(ext)]
	return t, ok
}

// FileTypeForName returns the file type for a filename based on its extension.
func FileTypeForName(name string) (FileType, bool) {
	return FileTypeForExtension(filepath.Ext(name))
}

// DocumentMetadata describes where a piece of text came from.
type DocumentMetadata struct {
	// Source is the originating document filename.
	Source string

	// FileType is the decoder family of the source file.
	FileType FileType

	// Page is the 1-based page number for paged formats, 0 otherwise.
	Page int
}

// SourceFile is the undecoded content of one document file.
type SourceFile struct {
	// Name is the filename without directory.
	Name string

	// Path is the full path on disk.
	Path string

	// Ext is the lower-case extension including the dot.
	Ext string

	// Content is the raw bytes.
	Content []byte
}

// RawDocument is decoded text from one file, or one page of a PDF.
// It is immutable once loaded.
type RawDocument struct {
	// Content is the decoded text.
	Content string

	// Metadata identifies the source file.
	Metadata DocumentMetadata
}

// Chunk is a bounded text segment derived from a RawDocument.
// Chunks are created by the chunker and never mutated.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// Text is the chunk content.
	Text string

	// Metadata is inherited from the owning RawDocument.
	Metadata DocumentMetadata

	// Position is the 0-based sequence position within the owning document.
	Position int
}

// IndexedVector pairs a chunk with its embedding.
type IndexedVector struct {
	Chunk     Chunk
	Embedding []float32
}

// SkippedFile records a document that could not be ingested.
type SkippedFile struct {
	// Name is the filename.
	Name string

	// Reason explains why the file was skipped.
	Reason string
}

// LoadResult is the outcome of loading the documents directory.
// Skipped files are recoverable and do not abort the load.
type LoadResult struct {
	Documents []RawDocument
	Skipped   []SkippedFile
}

// Warnings renders skipped files as human-readable warnings.
func (r *LoadResult) Warnings() []string {
	if r == nil || len(r.Skipped) == 0 {
		return nil
	}
	warnings := make([]string, 0, len(r.Skipped))
	for _, s := range r.Skipped {
		warnings = append(warnings, s.Name+": "+s.Reason)
	}
	return warnings
}

// ChangeType represents the type of document change.
type ChangeType int

const (
	// ChangeCreated indicates a new document.
	ChangeCreated ChangeType = iota

	// ChangeUpdated indicates a modified document.
	ChangeUpdated

	// ChangeDeleted indicates a removed document.
	ChangeDeleted
)

// String returns a lower-case name for the change.
func (c ChangeType) String() string {
	switch c {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	default:
		return unknownDescription
	}
}

// DocumentChange is a change to a file in the documents directory.
type DocumentChange struct {
	// Type is the kind of change.
	Type ChangeType

	// Name is the affected filename.
	Name string
}
