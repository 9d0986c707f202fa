package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/resumerag/internal/core/domain"
)

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.Equal(t, []string{".md", ".markdown"}, normaliser.Extensions())
	assert.Equal(t, domain.FileTypeMarkdown, normaliser.FileType())
}

func TestNormalise_Success(t *testing.T) {
	file := &domain.SourceFile{
		Name:    "resume.md",
		Ext:     ".md",
		Content: []byte("# Jane Roe\r\n\r\n## Experience\r\n\r\n- **Acme** senior engineer\r\n"),
	}

	docs, err := New().Normalise(context.Background(), file)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	assert.Equal(t, "Jane Roe\n\nExperience\n\nAcme senior engineer", docs[0].Content)
	assert.Equal(t, "resume.md", docs[0].Metadata.Source)
	assert.Equal(t, domain.FileTypeMarkdown, docs[0].Metadata.FileType)
}

func TestNormalise_NilFile(t *testing.T) {
	docs, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, docs)
}

func TestNormalise_EmptyContent(t *testing.T) {
	docs, err := New().Normalise(context.Background(), &domain.SourceFile{Name: "empty.md"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Empty(t, docs[0].Content)
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "headings removed",
			input:    "# Title\n## Subtitle\n### Third",
			expected: "Title\nSubtitle\nThird",
		},
		{
			name:     "bold removed",
			input:    "This is **bold** text",
			expected: "This is bold text",
		},
		{
			name:     "italic removed",
			input:    "Worked *remotely* for _two_ years",
			expected: "Worked remotely for two years",
		},
		{
			name:     "underscores in words kept",
			input:    "Contact jane_roe@example.com",
			expected: "Contact jane_roe@example.com",
		},
		{
			name:     "links converted",
			input:    "See [my site](https://example.com)",
			expected: "See my site",
		},
		{
			name:     "images removed",
			input:    "Photo ![me](me.png) here",
			expected: "Photo  here",
		},
		{
			name:     "code fence contents kept",
			input:    "Before\n```go\nfmt.Println()\n```\nAfter",
			expected: "Before\nfmt.Println()\n\nAfter",
		},
		{
			name:     "inline code unwrapped",
			input:    "Use `kubectl` daily",
			expected: "Use kubectl daily",
		},
		{
			name:     "blockquotes cleaned",
			input:    "> Great colleague",
			expected: "Great colleague",
		},
		{
			name:     "list markers removed",
			input:    "- Go\n- Rust",
			expected: "Go\nRust",
		},
		{
			name:     "numbered list markers removed",
			input:    "1. First\n2. Second",
			expected: "First\nSecond",
		},
		{
			name:     "front matter removed",
			input:    "---\ntitle: CV\n---\nBody",
			expected: "Body",
		},
		{
			name:     "html tags removed",
			input:    "Line<br/>break",
			expected: "Linebreak",
		},
		{
			name:     "extra newlines collapsed",
			input:    "A\n\n\n\nB",
			expected: "A\n\nB",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, stripMarkdown(tc.input))
		})
	}
}
