package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/resumerag/internal/core/domain"
)

var searchTopK int

var searchCmd = &cobra.Command{
	Use:   "search [question]",
	Short: "Search indexed resume chunks",
	Long: `Finds the resume chunks most similar to the question without generating
an answer. Chunks are ranked by cosine similarity of their embeddings.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 0, "number of chunks to return (0 = configured default)")
	requires(searchCmd, RequireIndex)
	rootCmd.AddCommand(searchCmd)
}

// hitView is the serialised form of a search hit.
type hitView struct {
	Source   string  `json:"source" yaml:"source"`
	Page     int     `json:"page,omitempty" yaml:"page,omitempty"`
	Position int     `json:"position" yaml:"position"`
	Score    float64 `json:"score" yaml:"score"`
	Text     string  `json:"text" yaml:"text"`
}

func hitViews(hits []domain.SearchHit) []hitView {
	views := make([]hitView, 0, len(hits))
	for _, h := range hits {
		views = append(views, hitView{
			Source:   h.Chunk.Metadata.Source,
			Page:     h.Chunk.Metadata.Page,
			Position: h.Chunk.Position,
			Score:    h.Score,
			Text:     h.Chunk.Text,
		})
	}
	return views
}

func runSearch(cmd *cobra.Command, args []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	hits, err := ragService.Search(cmd.Context(), args[0], searchTopK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	return render(cmd, hitViews(hits), func() {
		outputSearchTable(cmd, hits)
	})
}

func outputSearchTable(cmd *cobra.Command, hits []domain.SearchHit) {
	if len(hits) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range hits {
		source := hits[i].Chunk.Metadata.Source
		if hits[i].Chunk.Metadata.Page > 0 {
			source = fmt.Sprintf("%s p.%d", source, hits[i].Chunk.Metadata.Page)
		}
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, source, hits[i].Score)
		cmd.Printf("      %s\n", snippet(hits[i].Chunk.Text, 160))
		cmd.Println()
	}
}

// snippet flattens text to one line of at most n runes.
func snippet(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
