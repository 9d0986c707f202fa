package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/resumerag/internal/core/domain"
	"github.com/custodia-labs/resumerag/internal/normalisers/markdown"
	"github.com/custodia-labs/resumerag/internal/normalisers/plaintext"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir(), plaintext.New(), markdown.New())
	require.NoError(t, err)
	return store
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestNew(t *testing.T) {
	t.Run("creates missing directory", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "data", "resume")

		store, err := New(root, plaintext.New())
		require.NoError(t, err)

		info, err := os.Stat(root)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
		assert.Equal(t, root, store.Root())
	})

	t.Run("rejects empty root", func(t *testing.T) {
		_, err := New("")
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})

	t.Run("registers normaliser extensions", func(t *testing.T) {
		store := newTestStore(t)
		assert.Equal(t, []string{".markdown", ".md", ".txt"}, store.Extensions())
	})
}

func TestStore_Load(t *testing.T) {
	t.Run("empty directory", func(t *testing.T) {
		store := newTestStore(t)

		result, err := store.Load(context.Background())
		require.NoError(t, err)
		assert.Empty(t, result.Documents)
		assert.Empty(t, result.Skipped)
	})

	t.Run("loads supported files in name order", func(t *testing.T) {
		store := newTestStore(t)
		writeFile(t, store.Root(), "b.md", "# Skills\n\nGo and Rust")
		writeFile(t, store.Root(), "a.txt", "John Doe")

		result, err := store.Load(context.Background())
		require.NoError(t, err)
		require.Len(t, result.Documents, 2)

		assert.Equal(t, "a.txt", result.Documents[0].Metadata.Source)
		assert.Equal(t, domain.FileTypeText, result.Documents[0].Metadata.FileType)
		assert.Equal(t, "John Doe", result.Documents[0].Content)

		assert.Equal(t, "b.md", result.Documents[1].Metadata.Source)
		assert.Equal(t, domain.FileTypeMarkdown, result.Documents[1].Metadata.FileType)
		assert.NotContains(t, result.Documents[1].Content, "#")
	})

	t.Run("skips unsupported files with a warning", func(t *testing.T) {
		store := newTestStore(t)
		writeFile(t, store.Root(), "resume.txt", "John Doe")
		writeFile(t, store.Root(), "photo.png", "not text")

		result, err := store.Load(context.Background())
		require.NoError(t, err)
		require.Len(t, result.Documents, 1)
		require.Len(t, result.Skipped, 1)
		assert.Equal(t, "photo.png", result.Skipped[0].Name)
		assert.Equal(t, []string{"photo.png: " + domain.ErrUnsupportedFormat.Error()}, result.Warnings())
	})

	t.Run("skips undecodable files and continues", func(t *testing.T) {
		store := newTestStore(t)
		writeFile(t, store.Root(), "broken.txt", string([]byte{0xff, 0xfe, 0xfd}))
		writeFile(t, store.Root(), "good.txt", "Senior engineer")

		result, err := store.Load(context.Background())
		require.NoError(t, err)
		require.Len(t, result.Documents, 1)
		assert.Equal(t, "good.txt", result.Documents[0].Metadata.Source)
		require.Len(t, result.Skipped, 1)
		assert.Equal(t, "broken.txt", result.Skipped[0].Name)
		assert.Contains(t, result.Skipped[0].Reason, "broken.txt")
	})

	t.Run("ignores hidden files and directories", func(t *testing.T) {
		store := newTestStore(t)
		writeFile(t, store.Root(), ".draft.txt", "hidden")
		require.NoError(t, os.Mkdir(filepath.Join(store.Root(), "archive.txt"), 0o755))

		result, err := store.Load(context.Background())
		require.NoError(t, err)
		assert.Empty(t, result.Documents)
		assert.Empty(t, result.Skipped)
	})

	t.Run("honours cancelled context", func(t *testing.T) {
		store := newTestStore(t)
		writeFile(t, store.Root(), "resume.txt", "John Doe")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := store.Load(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestStore_ListAndCount(t *testing.T) {
	store := newTestStore(t)
	writeFile(t, store.Root(), "z.md", "z")
	writeFile(t, store.Root(), "a.txt", "a")
	writeFile(t, store.Root(), "notes.docx", "d")
	writeFile(t, store.Root(), ".hidden.txt", "h")

	assert.Equal(t, []string{"a.txt", "z.md"}, store.List())
	assert.Equal(t, 2, store.Count())
}

func TestStore_Add(t *testing.T) {
	t.Run("writes document", func(t *testing.T) {
		store := newTestStore(t)

		path, err := store.Add("cv.txt", strings.NewReader("Jane Roe"))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(store.Root(), "cv.txt"), path)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "Jane Roe", string(content))
		assert.Equal(t, []string{"cv.txt"}, store.List())
	})

	t.Run("replaces existing document", func(t *testing.T) {
		store := newTestStore(t)
		_, err := store.Add("cv.txt", strings.NewReader("old"))
		require.NoError(t, err)

		path, err := store.Add("cv.txt", strings.NewReader("new"))
		require.NoError(t, err)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "new", string(content))
	})

	t.Run("leaves no temporary files", func(t *testing.T) {
		store := newTestStore(t)
		_, err := store.Add("cv.md", strings.NewReader("# CV"))
		require.NoError(t, err)

		entries, err := os.ReadDir(store.Root())
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "cv.md", entries[0].Name())
	})

	t.Run("rejects unsupported extension", func(t *testing.T) {
		store := newTestStore(t)

		_, err := store.Add("cv.docx", strings.NewReader("x"))
		assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
		assert.Empty(t, store.List())
	})

	t.Run("rejects unsafe names", func(t *testing.T) {
		store := newTestStore(t)

		for _, name := range []string{"", "..", "../cv.txt", "sub/cv.txt", ".hidden.txt"} {
			_, err := store.Add(name, strings.NewReader("x"))
			assert.ErrorIs(t, err, domain.ErrInvalidInput, "name %q", name)
		}
	})
}

func TestStore_Remove(t *testing.T) {
	t.Run("removes document", func(t *testing.T) {
		store := newTestStore(t)
		writeFile(t, store.Root(), "cv.txt", "x")

		require.NoError(t, store.Remove("cv.txt"))
		assert.Empty(t, store.List())
	})

	t.Run("missing document", func(t *testing.T) {
		store := newTestStore(t)
		assert.ErrorIs(t, store.Remove("missing.txt"), domain.ErrNotFound)
	})

	t.Run("rejects path traversal", func(t *testing.T) {
		store := newTestStore(t)
		assert.ErrorIs(t, store.Remove("../cv.txt"), domain.ErrInvalidInput)
	})
}

func TestStore_Watch(t *testing.T) {
	t.Run("reports created file", func(t *testing.T) {
		store := newTestStore(t)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := store.Watch(ctx)
		require.NoError(t, err)

		go func() {
			time.Sleep(50 * time.Millisecond)
			os.WriteFile(filepath.Join(store.Root(), "new.txt"), []byte("content"), 0o644)
		}()

		select {
		case change := <-changes:
			assert.Equal(t, "new.txt", change.Name)
			assert.Contains(t, []domain.ChangeType{domain.ChangeCreated, domain.ChangeUpdated}, change.Type)
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for file change event")
		}
	})

	t.Run("reports removed file", func(t *testing.T) {
		store := newTestStore(t)
		writeFile(t, store.Root(), "old.md", "x")
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := store.Watch(ctx)
		require.NoError(t, err)

		go func() {
			time.Sleep(50 * time.Millisecond)
			os.Remove(filepath.Join(store.Root(), "old.md"))
		}()

		select {
		case change := <-changes:
			assert.Equal(t, domain.ChangeDeleted, change.Type)
			assert.Equal(t, "old.md", change.Name)
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for file change event")
		}
	})

	t.Run("closes channel on cancel", func(t *testing.T) {
		store := newTestStore(t)
		ctx, cancel := context.WithCancel(context.Background())

		changes, err := store.Watch(ctx)
		require.NoError(t, err)
		cancel()

		select {
		case _, ok := <-changes:
			assert.False(t, ok)
		case <-time.After(2 * time.Second):
			t.Fatal("channel not closed after cancel")
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, os.RemoveAll(store.Root()))

		_, err := store.Watch(context.Background())
		assert.Error(t, err)
	})
}

func TestHandleFsEvent(t *testing.T) {
	store := newTestStore(t)
	writeFile(t, store.Root(), "cv.txt", "x")
	require.NoError(t, os.Mkdir(filepath.Join(store.Root(), "dir.txt"), 0o755))

	tests := []struct {
		name       string
		file       string
		op         fsnotify.Op
		wantChange bool
		wantType   domain.ChangeType
	}{
		{name: "create", file: "cv.txt", op: fsnotify.Create, wantChange: true, wantType: domain.ChangeCreated},
		{name: "write", file: "cv.txt", op: fsnotify.Write, wantChange: true, wantType: domain.ChangeUpdated},
		{name: "remove", file: "gone.txt", op: fsnotify.Remove, wantChange: true, wantType: domain.ChangeDeleted},
		{name: "rename", file: "gone.md", op: fsnotify.Rename, wantChange: true, wantType: domain.ChangeDeleted},
		{name: "chmod ignored", file: "cv.txt", op: fsnotify.Chmod},
		{name: "hidden ignored", file: ".upload-123", op: fsnotify.Create},
		{name: "unsupported ignored", file: "photo.png", op: fsnotify.Create},
		{name: "directory ignored", file: "dir.txt", op: fsnotify.Create},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := fsnotify.Event{Name: filepath.Join(store.Root(), tt.file), Op: tt.op}

			change, ok := store.handleFsEvent(event)
			assert.Equal(t, tt.wantChange, ok)
			if tt.wantChange {
				assert.Equal(t, tt.wantType, change.Type)
				assert.Equal(t, tt.file, change.Name)
			}
		})
	}
}

func TestIsHidden(t *testing.T) {
	assert.True(t, isHidden(".env"))
	assert.True(t, isHidden(".upload-1"))
	assert.False(t, isHidden("cv.txt"))
	assert.False(t, isHidden("."))
	assert.False(t, isHidden(".."))
}
