// Command resumerag answers questions about a resume with retrieval-augmented
// generation.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/resumerag/internal/adapters/driven/ai"
	"github.com/custodia-labs/resumerag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/resumerag/internal/adapters/driving/cli"
	"github.com/custodia-labs/resumerag/internal/connectors/filesystem"
	"github.com/custodia-labs/resumerag/internal/core/services"
	"github.com/custodia-labs/resumerag/internal/logger"
	"github.com/custodia-labs/resumerag/internal/normalisers/markdown"
	"github.com/custodia-labs/resumerag/internal/normalisers/pdf"
	"github.com/custodia-labs/resumerag/internal/normalisers/plaintext"
	"github.com/custodia-labs/resumerag/internal/postprocessors/chunker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx, bootstrap); err != nil {
		stop()
		os.Exit(1)
	}
}

// bootstrap wires adapters into services, building only what req needs.
func bootstrap(ctx context.Context, opts cli.Options, req cli.Requirement) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}

	settingsService := services.NewSettingsService(configStore)
	out := &cli.Services{Settings: settingsService}
	if req < cli.RequireDocuments {
		return out, nil
	}

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	store, err := filesystem.New(settings.DocumentsDir, pdf.New(), plaintext.New(), markdown.New())
	if err != nil {
		return nil, err
	}
	out.Documents = services.NewDocumentService(store)
	out.Watcher = store
	if req < cli.RequirePipeline {
		return out, nil
	}

	backends, err := ai.Init(ctx, settings)
	if err != nil {
		return nil, err
	}
	out.Close = backends.Close

	splitter, err := chunker.New(
		chunker.WithChunkSize(settings.Chunking.Size),
		chunker.WithOverlap(settings.Chunking.Overlap),
	)
	if err != nil {
		backends.Close()
		return nil, err
	}

	promptDir := ""
	if opts.ConfigDir != "" {
		promptDir = filepath.Join(opts.ConfigDir, "prompts")
	}
	prompts, err := file.NewPromptStore(promptDir)
	if err != nil {
		backends.Close()
		return nil, err
	}

	rag, err := services.NewRAGService(store, splitter, backends.VectorIndex, backends.LLMService, prompts,
		services.RAGConfig{TopK: settings.TopK, DefaultModel: settings.LLM.Model})
	if err != nil {
		backends.Close()
		return nil, err
	}
	out.RAG = rag
	out.Models = services.NewModelService(backends.LLMService, settings.AvailableModels, rag.DefaultModel())
	out.Health = services.NewHealthService(backends.LLMService, backends.EmbeddingService, rag)

	if req >= cli.RequireIndex {
		// Commands still run against a degraded pipeline
		if err := rag.Initialize(ctx); err != nil {
			logger.Warn("Index not ready: %v", err)
		}
	}

	return out, nil
}
