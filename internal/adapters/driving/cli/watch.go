package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/resumerag/internal/core/services"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the index when documents change",
	Long: `Watches the documents directory and rebuilds the index after files are
added, changed or removed. Bursts of changes are coalesced into one rebuild.
Stop with Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	requires(watchCmd, RequireIndex)
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}
	if documentWatcher == nil {
		return errors.New("document watcher not configured")
	}

	reindexer := services.NewReindexer(ragService, documentWatcher, 0, func(r services.ReindexResult) {
		printReindex(cmd, r)
	})

	if documentService != nil {
		cmd.Printf("Watching %s\n", documentService.Dir())
	} else {
		cmd.Println("Watching documents directory")
	}

	err := reindexer.Start(cmd.Context())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func printReindex(cmd *cobra.Command, r services.ReindexResult) {
	names := make([]string, 0, len(r.Changes))
	for _, c := range r.Changes {
		names = append(names, c.Type.String()+" "+c.Name)
	}
	changed := strings.Join(names, ", ")

	if r.Err != nil {
		cmd.PrintErrf("Reindex failed after %s: %v\n", changed, r.Err)
		return
	}
	cmd.Printf("Reindexed %d chunks (%s)\n", r.Chunks, changed)
}
