package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/resumerag/internal/adapters/driving/tui"
	"github.com/custodia-labs/resumerag/internal/core/services"
	"github.com/custodia-labs/resumerag/internal/logger"
)

var chatCmd = &cobra.Command{
	Use:     "chat",
	Aliases: []string{"tui"},
	Short:   "Launch the interactive chat",
	Long: `Launch the interactive terminal chat for resumerag.

Ask questions and watch answers stream in, inspect the passages an answer
was built from, manage documents and edit settings. The index is rebuilt in
the background when files in the documents directory change.

Controls:
  Enter    - Ask
  Tab      - Show passages
  Esc      - Stop answer / Back
  Ctrl+L   - New conversation
  Ctrl+C   - Quit`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	requires(chatCmd, RequireIndex)
	rootCmd.AddCommand(chatCmd)
}

// runApp runs the TUI. Tests replace it.
var runApp = func(app *tui.App) error {
	return app.Run()
}

func runChat(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if ragService == nil {
		return errors.New("rag service not configured")
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Rebuild in the background while the chat is open
	if documentWatcher != nil {
		reindexer := services.NewReindexer(ragService, documentWatcher, 0, nil)
		go func() {
			if err := reindexer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("Document watcher stopped: %v", err)
			}
		}()
		defer reindexer.Stop()
	}

	app, err := tui.NewApp(&tui.Ports{
		RAG:       ragService,
		Documents: documentService,
		Settings:  settingsService,
		Models:    modelService,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(ctx)

	if err := runApp(app); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
