package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/resumerag/internal/core/domain"
)

var (
	queryModel  string
	queryTopK   int
	queryStream bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question about the resume",
	Long: `Retrieves the resume chunks most relevant to the question and asks the
generation model to answer from them. The sources used are listed after the
answer.

When no documents are indexed a fixed message is returned and the generation
model is not called.

Streaming prints the answer as it is generated. It is the default when
stdout is a terminal and the output format is text.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryModel, "model", "m", "", "generation model (default from settings)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of chunks used as context (0 = configured default)")
	queryCmd.Flags().BoolVarP(&queryStream, "stream", "s", false, "print the answer as it is generated")
	requires(queryCmd, RequireIndex)
	rootCmd.AddCommand(queryCmd)
}

// answerView is the serialised form of an answer.
type answerView struct {
	Answer  string   `json:"answer" yaml:"answer"`
	Model   string   `json:"model" yaml:"model"`
	Sources []string `json:"sources" yaml:"sources"`
	Warning string   `json:"warning,omitempty" yaml:"warning,omitempty"`
}

func runQuery(cmd *cobra.Command, args []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	stream := queryStream
	if !cmd.Flags().Changed("stream") {
		stream = !structured() && isTerminal()
	}
	if stream && !structured() {
		return runQueryStream(cmd, args[0])
	}

	answer, err := ragService.Query(cmd.Context(), args[0], queryModel, queryTopK)
	if err != nil {
		return queryError(err)
	}

	view := answerView{Answer: answer.Text, Model: answer.Model, Sources: answer.Sources, Warning: answer.Warning}
	return render(cmd, view, func() {
		printWarning(cmd, answer.Warning)
		cmd.Println(strings.TrimSpace(answer.Text))
		printSources(cmd, answer.Sources)
	})
}

func runQueryStream(cmd *cobra.Command, question string) error {
	stream, err := ragService.QueryStream(cmd.Context(), question, queryModel, queryTopK)
	if err != nil {
		return queryError(err)
	}
	printWarning(cmd, stream.Warning)

	for fragment, err := range stream.Fragments {
		if err != nil {
			cmd.Println()
			return queryError(err)
		}
		cmd.Print(fragment)
	}
	cmd.Println()
	printSources(cmd, stream.Sources)
	return nil
}

// printWarning writes an index warning to stderr.
func printWarning(cmd *cobra.Command, warning string) {
	if warning != "" {
		cmd.PrintErrf("Warning: %s\n", warning)
	}
}

func printSources(cmd *cobra.Command, sources []string) {
	if len(sources) == 0 {
		return
	}
	cmd.Println()
	cmd.Printf("Sources: %s\n", strings.Join(sources, ", "))
}

// queryError keeps the sources of a failed generation visible.
func queryError(err error) error {
	var genErr *domain.GenerationError
	if errors.As(err, &genErr) && len(genErr.Sources) > 0 {
		return fmt.Errorf("query failed (sources: %s): %w", strings.Join(genErr.Sources, ", "), err)
	}
	return fmt.Errorf("query failed: %w", err)
}
