package domain

import (
	"iter"
	"time"
)

// SearchHit is a chunk scored against a query.
type SearchHit struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Score is the cosine similarity, higher is more relevant.
	Score float64
}

// Answer is the result of a retrieval-augmented query.
type Answer struct {
	// Text is the generated (or canned) answer.
	Text string

	// Model is the generation model that produced the answer.
	Model string

	// Sources are the source filenames of the retrieved chunks,
	// de-duplicated in first-seen order.
	Sources []string

	// Hits are the retrieved chunks in rank order.
	Hits []SearchHit

	// Grounded is false when no context was found and the canned
	// answer was returned without calling the generation backend.
	Grounded bool

	// Warning is set when the answer is canned because the index cannot
	// serve searches, for example when it is corrupt or stale.
	Warning string

	// CreatedAt is when the answer was produced.
	CreatedAt time.Time
}

// AnswerStream is a streaming answer. Retrieval has already happened;
// generation starts when Fragments is first iterated and stops when the
// consumer stops pulling.
type AnswerStream struct {
	// Model is the generation model.
	Model string

	// Sources are the de-duplicated source filenames.
	Sources []string

	// Hits are the retrieved chunks in rank order.
	Hits []SearchHit

	// Grounded reports whether any context was retrieved.
	Grounded bool

	// Warning is set when the index cannot serve searches.
	Warning string

	// Fragments yields incremental text. A non-nil error ends the sequence.
	Fragments iter.Seq2[string, error]
}

// Text drains the stream and returns the concatenated fragments.
func (s *AnswerStream) Text() (string, error) {
	var out []byte
	for fragment, err := range s.Fragments {
		if err != nil {
			return string(out), err
		}
		out = append(out, fragment...)
	}
	return string(out), nil
}

// UniqueSources returns the source filenames of hits in first-seen order.
func UniqueSources(hits []SearchHit) []string {
	sources := make([]string, 0, len(hits))
	seen := make(map[string]struct{}, len(hits))
	for _, h := range hits {
		src := h.Chunk.Metadata.Source
		if src == "" {
			src = "Unknown"
		}
		if _, ok := seen[src]; ok {
			continue
		}
		seen[src] = struct{}{}
		sources = append(sources, src)
	}
	return sources
}
