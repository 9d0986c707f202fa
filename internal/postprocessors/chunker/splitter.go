// Package chunker splits documents into overlapping chunks using
// recursive separator-priority splitting.
package chunker

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/resumerag/internal/core/domain"
	"github.com/custodia-labs/resumerag/internal/core/ports/driven"
)

// Ensure Splitter implements the interface.
var _ driven.Chunker = (*Splitter)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// DefaultSeparators returns the separators tried in priority order:
// paragraph break, line break, sentence punctuation, space, and the
// empty string which splits into single characters.
func DefaultSeparators() []string {
	return []string{"\n\n", "\n", "。", ".", " ", ""}
}

// Splitter splits document text into chunks of at most chunkSize characters.
// Adjacent chunks of one document share overlap characters, fewer when the
// carried tail, the whitespace after it and the next piece cannot all fit in
// chunkSize. The size bound always wins.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
	newID      func() string
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		s.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		s.overlap = overlap
	}
}

// WithSeparators replaces the separator priority list.
func WithSeparators(separators ...string) Option {
	return func(s *Splitter) {
		s.separators = append([]string(nil), separators...)
	}
}

// WithIDFunc sets the chunk ID generator. Defaults to random UUIDs.
func WithIDFunc(fn func() string) Option {
	return func(s *Splitter) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// New creates a splitter. It returns an error wrapping domain.ErrConfiguration
// when the chunk size is not positive, the overlap is negative, or the
// overlap is not strictly smaller than the chunk size.
func New(opts ...Option) (*Splitter, error) {
	s := &Splitter{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: DefaultSeparators(),
		newID:      func() string { return uuid.New().String() },
	}

	for _, opt := range opts {
		opt(s)
	}

	cfg := domain.ChunkingSettings{Size: s.chunkSize, Overlap: s.overlap}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(s.separators) == 0 {
		return nil, fmt.Errorf("%w: at least one separator is required", domain.ErrConfiguration)
	}

	return s, nil
}

// ChunkSize returns the configured maximum chunk length.
func (s *Splitter) ChunkSize() int {
	return s.chunkSize
}

// Overlap returns the configured overlap.
func (s *Splitter) Overlap() int {
	return s.overlap
}

// Split chunks every document in order. Whitespace-only documents yield
// no chunks. Each chunk inherits its document's metadata.
func (s *Splitter) Split(docs []domain.RawDocument) []domain.Chunk {
	var chunks []domain.Chunk
	for _, doc := range docs {
		for i, text := range s.SplitText(doc.Content) {
			chunks = append(chunks, domain.Chunk{
				ID:       s.newID(),
				Text:     text,
				Metadata: doc.Metadata,
				Position: i,
			})
		}
	}
	return chunks
}

// SplitText splits a single text into chunk strings.
func (s *Splitter) SplitText(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	pieces := s.decompose(text, s.separators, nil)
	return s.merge(pieces)
}

// pieceLimit is the largest piece that still fits in a chunk after an
// overlap tail and one whitespace character have been carried over.
func (s *Splitter) pieceLimit() int {
	limit := s.chunkSize - s.overlap - 1
	if limit < 1 {
		limit = 1
	}
	return limit
}

// decompose splits text on the first separator it contains and recurses
// into oversized pieces with the remaining separators. Separators stay
// attached to the end of the piece they follow, so concatenating the
// pieces reproduces the text.
func (s *Splitter) decompose(text string, separators []string, out []string) []string {
	sep, rest := pickSeparator(text, separators)
	limit := s.pieceLimit()

	for _, part := range splitAfter(text, sep) {
		if part == "" {
			continue
		}
		// Whitespace runs stay with the preceding piece so words
		// on either side of them are not glued together.
		if sep != "" && strings.TrimSpace(part) == "" {
			if last := len(out) - 1; last >= 0 &&
				utf8.RuneCountInString(out[last])+utf8.RuneCountInString(part) <= limit {
				out[last] += part
				continue
			}
			if len(out) == 0 {
				continue
			}
		}
		if utf8.RuneCountInString(part) <= limit || len(rest) == 0 {
			out = append(out, part)
			continue
		}
		out = s.decompose(part, rest, out)
	}
	return out
}

// pickSeparator returns the first separator present in text and the
// separators after it. The empty separator always matches.
func pickSeparator(text string, separators []string) (string, []string) {
	for i, sep := range separators {
		if sep == "" || strings.Contains(text, sep) {
			return sep, separators[i+1:]
		}
	}
	// Nothing matched, so the text is indivisible.
	return separators[len(separators)-1], nil
}

// splitAfter splits text after each occurrence of sep.
// The empty separator yields single characters.
func splitAfter(text, sep string) []string {
	if sep != "" {
		return strings.SplitAfter(text, sep)
	}
	parts := make([]string, 0, len(text))
	for _, r := range text {
		parts = append(parts, string(r))
	}
	return parts
}

// merge packs pieces into chunks of at most chunkSize characters. When a
// chunk is emitted, its last overlap characters start the next chunk.
func (s *Splitter) merge(pieces []string) []string {
	var (
		chunks  []string
		buf     strings.Builder
		length  int
		pending int
		carried bool
		tail    string
		gap     string
	)

	reset := func(prefix string) {
		buf.Reset()
		buf.WriteString(prefix)
		length = utf8.RuneCountInString(prefix)
		carried = prefix != ""
		pending = 0
	}

	emit := func() {
		raw := buf.String()
		trimmed := strings.TrimRightFunc(raw, unicode.IsSpace)
		text := trimmed
		if !carried {
			text = strings.TrimLeftFunc(text, unicode.IsSpace)
		}
		tail, gap = "", ""
		if text != "" {
			chunks = append(chunks, text)
			tail = lastRunes(text, s.overlap)
			if tail != "" {
				gap = raw[len(trimmed):]
			}
		}
		reset(tail + gap)
	}

	for _, piece := range pieces {
		n := utf8.RuneCountInString(piece)

		if pending > 0 && length+n > s.chunkSize {
			emit()
		}

		// Narrow the carried tail when the next piece would not fit:
		// collapse the whitespace gap first, then cut the tail's front.
		// With overlap = chunkSize-1 a gap always costs a tail character.
		if pending == 0 && carried && length+n > s.chunkSize {
			g := collapseGap(gap)
			t := tail
			if room := s.chunkSize - n - utf8.RuneCountInString(g); utf8.RuneCountInString(t) > room {
				t = lastRunes(t, room)
			}
			if t == "" {
				g = ""
			}
			reset(t + g)
		}

		buf.WriteString(piece)
		length += n
		pending++
	}

	if pending > 0 {
		emit()
	}
	return chunks
}

// collapseGap reduces a whitespace run to a single character.
func collapseGap(gap string) string {
	switch {
	case gap == "":
		return ""
	case strings.Contains(gap, "\n"):
		return "\n"
	default:
		return " "
	}
}

// lastRunes returns the last n characters of text.
func lastRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}
	count := utf8.RuneCountInString(text)
	if count <= n {
		return text
	}
	runes := []rune(text)
	return string(runes[count-n:])
}
