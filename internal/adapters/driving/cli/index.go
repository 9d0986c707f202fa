package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the vector index from the documents directory",
	Long: `Loads every supported document (PDF, text, Markdown), splits it into
chunks, embeds the chunks and replaces the persisted vector index.

Files that cannot be read are skipped and reported. When the directory holds
nothing to index the existing index is left unchanged.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show document and index statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	requires(indexCmd, RequirePipeline)
	requires(statsCmd, RequireIndex)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(statsCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	n, err := ragService.IndexDocuments(cmd.Context())
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	stats := ragService.Stats(cmd.Context())
	view := struct {
		Chunks    int      `json:"chunks" yaml:"chunks"`
		Documents []string `json:"documents" yaml:"documents"`
		Warnings  []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	}{n, stats.Documents, stats.Warnings}

	return render(cmd, view, func() {
		for _, w := range stats.Warnings {
			cmd.Printf("Skipped: %s\n", w)
		}
		if n == 0 {
			cmd.Println("No documents to index.")
			return
		}
		cmd.Printf("Indexed %d chunks from %d document(s).\n", n, len(stats.Documents))
	})
}

func runStats(cmd *cobra.Command, _ []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	stats := ragService.Stats(cmd.Context())
	return render(cmd, stats, func() {
		cmd.Println("Index:")
		cmd.Printf("  State:           %s\n", stats.IndexState)
		cmd.Printf("  Ready:           %t\n", stats.VectorstoreReady)
		cmd.Printf("  Chunks:          %d\n", stats.ChunksCount)
		if stats.EmbeddingModel != "" {
			cmd.Printf("  Embedding model: %s\n", stats.EmbeddingModel)
		}
		cmd.Println()
		cmd.Printf("Documents (%d):\n", stats.DocumentsCount)
		for _, d := range stats.Documents {
			cmd.Printf("  %s\n", d)
		}
		if len(stats.Warnings) > 0 {
			cmd.Println()
			cmd.Printf("Warnings:\n  %s\n", strings.Join(stats.Warnings, "\n  "))
		}
	})
}
