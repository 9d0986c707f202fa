// Package cli provides the resumerag command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/resumerag/internal/core/ports/driven"
	"github.com/custodia-labs/resumerag/internal/core/ports/driving"
	"github.com/custodia-labs/resumerag/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Requirement is how much of the application a command needs before it runs.
type Requirement int

// Requirements in increasing cost.
const (
	// RequireSettings needs only the configuration store.
	RequireSettings Requirement = iota

	// RequireDocuments adds the documents directory.
	RequireDocuments

	// RequirePipeline adds the AI backends and the vector index.
	RequirePipeline

	// RequireIndex additionally loads (or builds) the index before running.
	RequireIndex
)

const annotationRequires = "resumerag/requires"

// Options are the global flags handed to the bootstrap function.
type Options struct {
	ConfigDir string
	Verbose   bool
}

// Services are the driving ports the commands call. Fields a requirement
// does not cover may be nil.
type Services struct {
	RAG       driving.RAGService
	Models    driving.ModelService
	Health    driving.HealthService
	Documents driving.DocumentService
	Settings  driving.SettingsService
	Watcher   driven.DocumentWatcher

	// Close releases backends and the index.
	Close func()
}

// Bootstrap builds the services a command needs.
type Bootstrap func(ctx context.Context, opts Options, req Requirement) (*Services, error)

// Service instances injected by Execute or tests.
var (
	ragService      driving.RAGService
	modelService    driving.ModelService
	healthService   driving.HealthService
	documentService driving.DocumentService
	settingsService driving.SettingsService
	documentWatcher driven.DocumentWatcher
	closeServices   func()

	bootstrap Bootstrap
)

// Global flags.
var (
	verboseFlag   bool
	configDirFlag string
	outputFlag    string
)

var rootCmd = &cobra.Command{
	Use:   "resumerag",
	Short: "Ask questions about a resume",
	Long: `resumerag answers natural-language questions about a resume.

Documents (PDF, text, Markdown) in the documents directory are split into
chunks, embedded and stored in a local vector index. Questions are answered
by retrieving the most relevant chunks and passing them as context to a
text-generation model.

Get started:
  resumerag documents add ~/cv.pdf
  resumerag index
  resumerag query "Where does this person work?"`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if closeServices != nil {
			closeServices()
			closeServices = nil
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "print pipeline logs to stderr")
	rootCmd.PersistentFlags().StringVar(&configDirFlag, "config-dir", "", "configuration directory (default ~/.resumerag)")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", outputText, "output format: text, json or yaml")
}

// Execute runs the root command with services built by boot.
func Execute(ctx context.Context, boot Bootstrap) error {
	bootstrap = boot
	return rootCmd.ExecuteContext(ctx)
}

// SetServices injects services directly, bypassing bootstrap.
func SetServices(s *Services) {
	ragService = s.RAG
	modelService = s.Models
	healthService = s.Health
	documentService = s.Documents
	settingsService = s.Settings
	documentWatcher = s.Watcher
	closeServices = s.Close
}

// requires marks the services cmd needs.
func requires(cmd *cobra.Command, req Requirement) {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[annotationRequires] = fmt.Sprint(int(req))
}

func requirementOf(cmd *cobra.Command) Requirement {
	var req int
	if v, ok := cmd.Annotations[annotationRequires]; ok {
		if _, err := fmt.Sscan(v, &req); err != nil {
			return RequireSettings
		}
	}
	return Requirement(req)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verboseFlag)

	if _, err := parseOutput(outputFlag); err != nil {
		return err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Load .env: %v", err)
	}

	if bootstrap == nil {
		return nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	services, err := bootstrap(ctx, Options{ConfigDir: configDirFlag, Verbose: verboseFlag}, requirementOf(cmd))
	if err != nil {
		return err
	}
	SetServices(services)
	return nil
}

// isTerminal reports whether stdout is an interactive terminal.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
