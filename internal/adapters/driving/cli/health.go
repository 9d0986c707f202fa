package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check backend connectivity and index readiness",
	Long: `Pings the generation and embedding backends and reports whether the
vector index is ready. The status is "healthy" when the generation backend
answers, otherwise "degraded".`,
	Args: cobra.NoArgs,
	RunE: runHealth,
}

func init() {
	requires(healthCmd, RequireIndex)
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, _ []string) error {
	if healthService == nil {
		return errors.New("health service not configured")
	}

	h := healthService.Check(cmd.Context())
	return render(cmd, h, func() {
		cmd.Printf("Status:           %s\n", h.Status)
		cmd.Printf("LLM:              %s\n", connected(h.LLMConnected))
		cmd.Printf("Embeddings:       %s\n", connected(h.EmbeddingConnected))
		cmd.Printf("Vector store:     %s\n", ready(h.VectorstoreReady))
		cmd.Printf("Documents loaded: %d\n", h.DocumentsLoaded)
	})
}

func connected(ok bool) string {
	if ok {
		return "connected"
	}
	return "unreachable"
}

func ready(ok bool) string {
	if ok {
		return "ready"
	}
	return "not ready"
}
