// Package pdf extracts text from PDF resumes, one document per page.
//
// Extraction shells out to pdftotext from poppler-utils. docconv stages the
// input in a local file for it.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"code.sajari.com/docconv/v2"

	"github.com/custodia-labs/resumerag/internal/core/domain"
	"github.com/custodia-labs/resumerag/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// ErrPDFToolNotFound indicates pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// pageBreak separates pages in pdftotext output.
const pageBreak = "\f"

// Converter extracts text from PDF bytes. Pages are separated by form feeds.
type Converter func(ctx context.Context, r io.Reader) (string, error)

// Normaliser handles PDF documents.
type Normaliser struct {
	convert Converter
}

// New creates a PDF normaliser backed by pdftotext.
func New() *Normaliser {
	return &Normaliser{convert: convertPages}
}

// NewWithConverter creates a PDF normaliser with a custom converter.
// Used by tests to avoid depending on pdftotext.
func NewWithConverter(convert Converter) *Normaliser {
	return &Normaliser{convert: convert}
}

// Extensions returns the extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".pdf"}
}

// FileType returns the file type recorded in document metadata.
func (n *Normaliser) FileType() domain.FileType {
	return domain.FileTypePDF
}

// Normalise extracts the text of a PDF. When the extracted text contains
// page breaks, one document is returned per non-empty page.
func (n *Normaliser) Normalise(ctx context.Context, file *domain.SourceFile) ([]domain.RawDocument, error) {
	if file == nil {
		return nil, domain.ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, err := n.convert(ctx, bytes.NewReader(file.Content))
	if err != nil {
		return nil, fmt.Errorf("extract text from %s: %w", file.Name, err)
	}

	pages := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), pageBreak)
	docs := make([]domain.RawDocument, 0, len(pages))
	for i, page := range pages {
		if strings.TrimSpace(page) == "" {
			continue
		}
		pageNum := i + 1
		if len(pages) == 1 {
			pageNum = 0
		}
		docs = append(docs, domain.RawDocument{
			Content: page,
			Metadata: domain.DocumentMetadata{
				Source:   file.Name,
				FileType: domain.FileTypePDF,
				Page:     pageNum,
			},
		})
	}

	return docs, nil
}

// convertPages runs pdftotext over r and keeps its page breaks.
func convertPages(ctx context.Context, r io.Reader) (string, error) {
	f, err := docconv.NewLocalFile(r)
	if err != nil {
		return "", fmt.Errorf("staging pdf: %w", err)
	}
	defer f.Done()

	out, err := exec.CommandContext(ctx, "pdftotext", pdftotextArgs(f.Name())...).Output()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", ErrPDFToolNotFound
		}
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}

// pdftotextArgs writes UTF-8 text to stdout. Unlike docconv's own
// invocation it omits -nopgbrk, so every page ends with a form feed.
func pdftotextArgs(path string) []string {
	return []string{"-q", "-enc", "UTF-8", "-eol", "unix", path, "-"}
}

// CheckAvailable returns ErrPDFToolNotFound when pdftotext is missing.
func CheckAvailable() error {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns how to install pdftotext on common platforms.
func InstallInstructions() string {
	return `PDF support requires pdftotext (from poppler):
  macOS:   brew install poppler
  Debian:  apt install poppler-utils
  Fedora:  dnf install poppler-utils`
}
