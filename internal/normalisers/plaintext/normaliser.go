package plaintext

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/resumerag/internal/core/domain"
	"github.com/custodia-labs/resumerag/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// utf8BOM is stripped from the start of text files.
const utf8BOM = "\ufeff"

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".txt"}
}

// FileType returns the file type recorded in document metadata.
func (n *Normaliser) FileType() domain.FileType {
	return domain.FileTypeText
}

// Normalise returns the file content as a single document.
// Line endings are normalised to \n.
func (n *Normaliser) Normalise(_ context.Context, file *domain.SourceFile) ([]domain.RawDocument, error) {
	if file == nil {
		return nil, domain.ErrInvalidInput
	}
	if !utf8.Valid(file.Content) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8 text", domain.ErrInvalidInput, file.Name)
	}

	content := strings.TrimPrefix(string(file.Content), utf8BOM)
	content = strings.ReplaceAll(content, "\r\n", "\n")

	return []domain.RawDocument{{
		Content: content,
		Metadata: domain.DocumentMetadata{
			Source:   file.Name,
			FileType: domain.FileTypeText,
		},
	}}, nil
}
