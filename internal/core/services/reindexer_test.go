package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/resumerag/internal/core/domain"
)

func TestReindexer_DebouncesBursts(t *testing.T) {
	f := newRAGFixture(t)
	f.withDocuments("resume.txt")
	watcher := &mockWatcher{ch: make(chan domain.DocumentChange, 8)}

	results := make(chan ReindexResult, 4)
	r := NewReindexer(f.svc, watcher, 30*time.Millisecond, func(res ReindexResult) { results <- res })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- r.Start(ctx) }()

	watcher.ch <- domain.DocumentChange{Type: domain.ChangeCreated, Name: "resume.txt"}
	watcher.ch <- domain.DocumentChange{Type: domain.ChangeUpdated, Name: "resume.txt"}
	watcher.ch <- domain.DocumentChange{Type: domain.ChangeUpdated, Name: "resume.txt"}

	select {
	case res := <-results:
		require.NoError(t, res.Err)
		assert.Len(t, res.Changes, 3)
		assert.Equal(t, 1, res.Chunks)
	case <-time.After(2 * time.Second):
		t.Fatal("no rebuild after changes")
	}

	select {
	case <-results:
		t.Fatal("burst produced more than one rebuild")
	case <-time.After(100 * time.Millisecond):
	}
	assert.EqualValues(t, 1, f.index.buildCalls.Load())

	r.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("reindexer did not stop")
	}
}

func TestReindexer_RetriesWhileBuildRuns(t *testing.T) {
	f := newRAGFixture(t)
	f.withDocuments("resume.txt")
	f.index.buildErr = domain.ErrBuildInProgress
	watcher := &mockWatcher{ch: make(chan domain.DocumentChange, 1)}

	results := make(chan ReindexResult, 1)
	r := NewReindexer(f.svc, watcher, 20*time.Millisecond, func(res ReindexResult) { results <- res })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Start(ctx) }()

	watcher.ch <- domain.DocumentChange{Type: domain.ChangeDeleted, Name: "old.pdf"}
	require.Eventually(t, func() bool { return f.index.buildCalls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Empty(t, results)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestReindexer_WatchError(t *testing.T) {
	f := newRAGFixture(t)
	r := NewReindexer(f.svc, &mockWatcher{err: domain.ErrConfiguration}, 0, nil)

	assert.ErrorIs(t, r.Start(context.Background()), domain.ErrConfiguration)
	assert.Equal(t, DefaultDebounce, r.debounce)
	r.Stop()
}

func TestReindexer_ClosedChannelEndsLoop(t *testing.T) {
	f := newRAGFixture(t)
	ch := make(chan domain.DocumentChange)
	close(ch)

	r := NewReindexer(f.svc, &mockWatcher{ch: ch}, time.Millisecond, nil)
	assert.NoError(t, r.Start(context.Background()))
}
