package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/resumerag/internal/core/domain"
	"github.com/custodia-labs/resumerag/internal/core/ports/driven"
	"github.com/custodia-labs/resumerag/internal/core/ports/driving"
	"github.com/custodia-labs/resumerag/internal/logger"
)

// Ensure ModelService implements the interface.
var _ driving.ModelService = (*ModelService)(nil)

// customModelDescription describes backend models missing from the catalogue.
const customModelDescription = "Custom model"

// ModelService merges the configured model catalogue with the models the
// generation backend actually has.
type ModelService struct {
	llm          driven.LLMService
	catalogue    []domain.ModelInfo
	defaultModel string
}

// NewModelService creates a model service. Catalogue entries use the
// "name:Display Name:Description" form.
func NewModelService(llm driven.LLMService, catalogue []string, defaultModel string) *ModelService {
	models := make([]domain.ModelInfo, 0, len(catalogue))
	for _, entry := range catalogue {
		info := domain.ParseModelEntry(entry)
		if info.Name == "" {
			continue
		}
		models = append(models, info)
	}
	if defaultModel == "" && llm != nil {
		defaultModel = llm.ModelName()
	}
	return &ModelService{llm: llm, catalogue: models, defaultModel: defaultModel}
}

// List returns the catalogue with availability flags, followed by any
// backend models not in the catalogue. An unreachable backend marks every
// model unavailable rather than failing.
func (s *ModelService) List(ctx context.Context) ([]domain.ModelInfo, error) {
	local := s.localModels(ctx)

	models := make([]domain.ModelInfo, 0, len(s.catalogue)+len(local))
	listed := make(map[string]bool, len(s.catalogue))
	for _, m := range s.catalogue {
		m.IsAvailable = contains(local, baseModelName(m.Name))
		models = append(models, m)
		listed[m.Name] = true
	}

	for _, name := range local {
		if listed[name] {
			continue
		}
		listed[name] = true
		models = append(models, domain.ModelInfo{
			Name:        name,
			DisplayName: name,
			Description: customModelDescription,
			IsAvailable: true,
		})
	}
	return models, nil
}

// Pull downloads a model through the backend.
func (s *ModelService) Pull(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: model name is required", domain.ErrInvalidInput)
	}
	if s.llm == nil {
		return fmt.Errorf("%w: no generation backend configured", domain.ErrConfiguration)
	}
	logger.Info("Pulling model %s", name)
	if err := s.llm.PullModel(ctx, name); err != nil {
		return fmt.Errorf("pull model %s: %w", name, err)
	}
	return nil
}

// Default returns the default generation model.
func (s *ModelService) Default() string {
	return s.defaultModel
}

// localModels returns backend model names without tags, de-duplicated in
// backend order.
func (s *ModelService) localModels(ctx context.Context) []string {
	if s.llm == nil {
		return nil
	}
	names, err := s.llm.ListModels(ctx)
	if err != nil {
		logger.Warn("List backend models: %v", err)
		return nil
	}

	local := make([]string, 0, len(names))
	for _, n := range names {
		base := baseModelName(n)
		if base != "" && !contains(local, base) {
			local = append(local, base)
		}
	}
	return local
}

// baseModelName strips a ":tag" suffix, so "llama3.2:latest" is "llama3.2".
func baseModelName(name string) string {
	base, _, _ := strings.Cut(strings.TrimSpace(name), ":")
	return base
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
