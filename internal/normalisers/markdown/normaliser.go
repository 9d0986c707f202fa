package markdown

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/resumerag/internal/core/domain"
	"github.com/custodia-labs/resumerag/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles Markdown documents.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".md", ".markdown"}
}

// FileType returns the file type recorded in document metadata.
func (n *Normaliser) FileType() domain.FileType {
	return domain.FileTypeMarkdown
}

// Normalise converts a markdown file to a single plain text document.
func (n *Normaliser) Normalise(_ context.Context, file *domain.SourceFile) ([]domain.RawDocument, error) {
	if file == nil {
		return nil, domain.ErrInvalidInput
	}

	content := strings.ReplaceAll(string(file.Content), "\r\n", "\n")

	return []domain.RawDocument{{
		Content: stripMarkdown(content),
		Metadata: domain.DocumentMetadata{
			Source:   file.Name,
			FileType: domain.FileTypeMarkdown,
		},
	}}, nil
}

var (
	frontMatter   = regexp.MustCompile(`(?s)\A---\n.*?\n---\n`)
	codeFence     = regexp.MustCompile("(?s)```[^\n]*\n(.*?)```")
	inlineCode    = regexp.MustCompile("`([^`]+)`")
	images        = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	links         = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	htmlTags      = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)
	headings      = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	blockquote    = regexp.MustCompile(`(?m)^>\s?`)
	horizontal    = regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`)
	listMarkers   = regexp.MustCompile(`(?m)^(\s*)[-*+]\s+`)
	numberedList  = regexp.MustCompile(`(?m)^(\s*)\d+\.\s+`)
	tableDivider  = regexp.MustCompile(`(?m)^\|?\s*:?-{3,}:?\s*(\|\s*:?-{3,}:?\s*)*\|?\s*$`)
	emphasis      = regexp.MustCompile(`(\*\*|__)(.+?)(\*\*|__)`)
	italic        = regexp.MustCompile(`(^|[\s(])[*_]([^*_\n]+)[*_]`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// stripMarkdown reduces markdown to readable plain text. Code contents,
// link text and list items are kept; markup is removed.
func stripMarkdown(content string) string {
	content = frontMatter.ReplaceAllString(content, "")
	content = codeFence.ReplaceAllString(content, "$1")
	content = inlineCode.ReplaceAllString(content, "$1")
	content = images.ReplaceAllString(content, "")
	content = links.ReplaceAllString(content, "$1")
	content = htmlTags.ReplaceAllString(content, "")
	content = tableDivider.ReplaceAllString(content, "")
	content = horizontal.ReplaceAllString(content, "")
	content = headings.ReplaceAllString(content, "")
	content = blockquote.ReplaceAllString(content, "")
	content = listMarkers.ReplaceAllString(content, "$1")
	content = numberedList.ReplaceAllString(content, "$1")
	content = emphasis.ReplaceAllString(content, "$2")
	content = italic.ReplaceAllString(content, "$1$2")
	content = multiNewlines.ReplaceAllString(content, "\n\n")

	return strings.TrimSpace(content)
}
