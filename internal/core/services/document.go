package services

import (
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/custodia-labs/resumerag/internal/core/domain"
	"github.com/custodia-labs/resumerag/internal/core/ports/driven"
	"github.com/custodia-labs/resumerag/internal/core/ports/driving"
	"github.com/custodia-labs/resumerag/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages the resume files in the documents directory.
// Changes take effect in answers after the next index build.
type DocumentService struct {
	store  driven.DocumentStore
	opener func(path string) error
}

// NewDocumentService creates a new document service.
func NewDocumentService(store driven.DocumentStore) *DocumentService {
	return &DocumentService{store: store, opener: openPath}
}

// List returns the supported filenames.
func (s *DocumentService) List() []string {
	return s.store.List()
}

// Add stores a new document.
func (s *DocumentService) Add(name string, r io.Reader) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: document name is required", domain.ErrInvalidInput)
	}
	path, err := s.store.Add(name, r)
	if err != nil {
		return "", fmt.Errorf("add document %s: %w", name, err)
	}
	logger.Info("Added %s", path)
	return path, nil
}

// Remove deletes a document.
func (s *DocumentService) Remove(name string) error {
	if err := s.store.Remove(name); err != nil {
		return fmt.Errorf("remove document %s: %w", name, err)
	}
	logger.Info("Removed %s", name)
	return nil
}

// Open opens a document in the system's default application.
func (s *DocumentService) Open(name string) error {
	if !slices.Contains(s.store.List(), name) {
		return fmt.Errorf("%w: document %q", domain.ErrNotFound, name)
	}
	return s.opener(filepath.Join(s.store.Root(), name))
}

// Dir returns the documents directory.
func (s *DocumentService) Dir() string {
	return s.store.Root()
}

// openPath opens a path using the system default handler.
func openPath(path string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux":
		cmd = exec.Command("xdg-open", path)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		return fmt.Errorf("%w: cannot open files on %s", domain.ErrNotImplemented, runtime.GOOS)
	}

	return cmd.Start()
}
