package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/resumerag/internal/core/domain"
	"github.com/custodia-labs/resumerag/internal/core/ports/driven"
	"github.com/custodia-labs/resumerag/internal/core/ports/driving"
	"github.com/custodia-labs/resumerag/internal/logger"
)

// DefaultDebounce is how long the documents directory must be quiet before
// a rebuild starts.
const DefaultDebounce = 2 * time.Second

// ReindexResult reports one rebuild triggered by document changes.
type ReindexResult struct {
	Changes []domain.DocumentChange
	Chunks  int
	Err     error
}

// Reindexer rebuilds the index when the documents directory changes.
// Changes are debounced and rebuilds run one at a time on the loop goroutine.
type Reindexer struct {
	rag      driving.RAGService
	watcher  driven.DocumentWatcher
	debounce time.Duration
	onResult func(ReindexResult)

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// NewReindexer creates a reindexer. A debounce of zero uses DefaultDebounce.
func NewReindexer(
	rag driving.RAGService,
	watcher driven.DocumentWatcher,
	debounce time.Duration,
	onResult func(ReindexResult),
) *Reindexer {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if onResult == nil {
		onResult = func(ReindexResult) {}
	}
	return &Reindexer{
		rag:      rag,
		watcher:  watcher,
		debounce: debounce,
		onResult: onResult,
	}
}

// Start watches for changes until ctx is cancelled or Stop is called.
// It blocks. Calling Start while running is a no-op.
func (r *Reindexer) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = true
	r.stopCh = make(chan struct{})
	stopCh := r.stopCh
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	changes, err := r.watcher.Watch(ctx)
	if err != nil {
		return err
	}
	return r.run(ctx, stopCh, changes)
}

// Stop ends a running Start.
func (r *Reindexer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return
	}
	r.running = false
	close(r.stopCh)
}

// run is the main loop. The timer is armed by the first change and re-armed
// by each later one, so a burst of writes yields one rebuild.
func (r *Reindexer) run(ctx context.Context, stopCh <-chan struct{}, changes <-chan domain.DocumentChange) error {
	timer := time.NewTimer(r.debounce)
	timer.Stop()
	defer timer.Stop()

	var pending []domain.DocumentChange
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-stopCh:
			return nil

		case change, ok := <-changes:
			if !ok {
				return nil
			}
			logger.Debug("Document %s: %s", change.Type, change.Name)
			pending = append(pending, change)
			timer.Reset(r.debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			n, err := r.rag.IndexDocuments(ctx)
			if errors.Is(err, domain.ErrBuildInProgress) {
				logger.Debug("Build already running, retrying in %s", r.debounce)
				timer.Reset(r.debounce)
				continue
			}
			if err != nil {
				logger.Error("Reindex failed: %v", err)
			}
			r.onResult(ReindexResult{Changes: pending, Chunks: n, Err: err})
			pending = nil
		}
	}
}
