// Package filesystem implements the document store over a flat directory
// of resume files.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/resumerag/internal/core/domain"
	"github.com/custodia-labs/resumerag/internal/core/ports/driven"
	"github.com/custodia-labs/resumerag/internal/logger"
)

// Ensure Store implements the interfaces.
var (
	_ driven.DocumentStore   = (*Store)(nil)
	_ driven.DocumentWatcher = (*Store)(nil)
)

// Store loads resume documents from a single directory.
// Subdirectories and hidden files are ignored.
type Store struct {
	root     string
	decoders map[string]driven.Normaliser

	// mu serialises writes to the directory.
	mu sync.Mutex
}

// New creates a store over root, creating the directory when missing.
// Each normaliser is registered for the extensions it reports.
func New(root string, normalisers ...driven.Normaliser) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: documents directory is required", domain.ErrConfiguration)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create documents directory: %w", err)
	}

	s := &Store{
		root:     root,
		decoders: make(map[string]driven.Normaliser),
	}
	for _, n := range normalisers {
		for _, ext := range n.Extensions() {
			s.decoders[strings.ToLower(ext)] = n
		}
	}
	return s, nil
}

// Root returns the documents directory.
func (s *Store) Root() string {
	return s.root
}

// Extensions returns the registered extensions, sorted.
func (s *Store) Extensions() []string {
	exts := make([]string, 0, len(s.decoders))
	for ext := range s.decoders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Load decodes every supported file in name order. Unsupported and
// undecodable files are skipped with a warning.
func (s *Store) Load(ctx context.Context) (*domain.LoadResult, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read documents directory: %w", err)
	}

	result := &domain.LoadResult{}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || isHidden(entry.Name()) {
			continue
		}

		name := entry.Name()
		decoder, ok := s.decoder(name)
		if !ok {
			s.skip(result, name, domain.ErrUnsupportedFormat.Error())
			continue
		}

		docs, err := s.decode(ctx, decoder, name)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			s.skip(result, name, err.Error())
			continue
		}
		logger.Debug("loaded %s: %d document(s)", name, len(docs))
		result.Documents = append(result.Documents, docs...)
	}

	return result, nil
}

func (s *Store) decode(ctx context.Context, decoder driven.Normaliser, name string) ([]domain.RawDocument, error) {
	path := filepath.Join(s.root, name)
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	return decoder.Normalise(ctx, &domain.SourceFile{
		Name:    name,
		Path:    path,
		Ext:     strings.ToLower(filepath.Ext(name)),
		Content: content,
	})
}

func (s *Store) skip(result *domain.LoadResult, name, reason string) {
	logger.Warn("skipping %s: %s", name, reason)
	result.Skipped = append(result.Skipped, domain.SkippedFile{Name: name, Reason: reason})
}

func (s *Store) decoder(name string) (driven.Normaliser, bool) {
	d, ok := s.decoders[strings.ToLower(filepath.Ext(name))]
	return d, ok
}

// List returns supported filenames, sorted. Nothing is decoded.
func (s *Store) List() []string {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		logger.Debug("list documents: %v", err)
		return []string{}
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || isHidden(entry.Name()) {
			continue
		}
		if _, ok := s.decoder(entry.Name()); ok {
			names = append(names, entry.Name())
		}
	}
	return names
}

// Count returns the number of supported files.
func (s *Store) Count() int {
	return len(s.List())
}

// Add writes a document into the directory, replacing any file with the
// same name. The write goes through a temporary file so readers never see
// a partial document.
func (s *Store) Add(name string, r io.Reader) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	if _, ok := s.decoder(name); !ok {
		return "", fmt.Errorf("%w: %q (allowed: %s)",
			domain.ErrUnsupportedFormat, filepath.Ext(name), strings.Join(domain.SupportedExtensions(), ", "))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}

	dest := filepath.Join(s.root, name)
	if err := os.Rename(tmpPath, dest); err != nil {
		return "", fmt.Errorf("store %s: %w", name, err)
	}
	logger.Info("added document %s", name)
	return dest, nil
}

// Remove deletes a document by filename.
func (s *Store) Remove(name string) error {
	if err := validateName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(filepath.Join(s.root, name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: document %s", domain.ErrNotFound, name)
		}
		return fmt.Errorf("remove %s: %w", name, err)
	}
	logger.Info("removed document %s", name)
	return nil
}

// Watch reports created, updated and deleted supported files until ctx
// is cancelled.
func (s *Store) Watch(ctx context.Context) (<-chan domain.DocumentChange, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(s.root); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", s.root, err)
	}

	changes := make(chan domain.DocumentChange)
	go func() {
		defer close(changes)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				change, ok := s.handleFsEvent(event)
				if !ok {
					continue
				}
				select {
				case changes <- change:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("watch %s: %v", s.root, err)
			}
		}
	}()

	return changes, nil
}

// handleFsEvent converts a filesystem event into a document change.
// Directories, hidden files, unsupported extensions and chmod events are ignored.
func (s *Store) handleFsEvent(event fsnotify.Event) (domain.DocumentChange, bool) {
	name := filepath.Base(event.Name)
	if isHidden(name) {
		return domain.DocumentChange{}, false
	}
	if _, ok := s.decoder(name); !ok {
		return domain.DocumentChange{}, false
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return domain.DocumentChange{Type: domain.ChangeDeleted, Name: name}, true
	case event.Has(fsnotify.Create):
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			return domain.DocumentChange{}, false
		}
		return domain.DocumentChange{Type: domain.ChangeCreated, Name: name}, true
	case event.Has(fsnotify.Write):
		return domain.DocumentChange{Type: domain.ChangeUpdated, Name: name}, true
	default:
		return domain.DocumentChange{}, false
	}
}

// validateName rejects names that would escape the documents directory.
func validateName(name string) error {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name ||
		strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: invalid document name %q", domain.ErrInvalidInput, name)
	}
	if isHidden(name) {
		return fmt.Errorf("%w: hidden document name %q", domain.ErrInvalidInput, name)
	}
	return nil
}

// isHidden returns true for dotfiles, which include temporary uploads.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
