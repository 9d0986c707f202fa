package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/resumerag/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/resumerag/internal/core/domain"
	"github.com/custodia-labs/resumerag/internal/core/ports/driven"
	"github.com/custodia-labs/resumerag/internal/logger"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

const (
	// IndexFileName is the database file inside the index directory.
	IndexFileName = "index.db"

	// formatVersion is bumped whenever the persisted layout changes incompatibly.
	formatVersion = 1

	defaultWorkers = 4
)

// snapshot is an immutable view of the index. Searches only ever see a
// complete snapshot.
type snapshot struct {
	info    domain.IndexInfo
	entries []entry
}

type entry struct {
	chunk  domain.Chunk
	vector []float32
}

// VectorIndex is a flat cosine-similarity index persisted to a SQLite file.
type VectorIndex struct {
	dir       string
	path      string
	embedder  driven.EmbeddingService
	batchSize int
	workers   int

	buildMu  sync.Mutex
	building atomic.Bool
	current  atomic.Pointer[snapshot]
}

// IndexOption configures the vector index.
type IndexOption func(*VectorIndex)

// WithBatchSize sets how many chunks are embedded per request.
func WithBatchSize(n int) IndexOption {
	return func(idx *VectorIndex) {
		if n > 0 {
			idx.batchSize = n
		}
	}
}

// WithWorkers sets how many embedding batches run concurrently.
func WithWorkers(n int) IndexOption {
	return func(idx *VectorIndex) {
		if n > 0 {
			idx.workers = n
		}
	}
}

// NewVectorIndex creates an index persisted under dir.
// Nothing is read from disk until Load is called.
func NewVectorIndex(dir string, embedder driven.EmbeddingService, opts ...IndexOption) (*VectorIndex, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: index directory is required", domain.ErrConfiguration)
	}
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedding service is required", domain.ErrConfiguration)
	}

	idx := &VectorIndex{
		dir:       dir,
		path:      filepath.Join(dir, IndexFileName),
		embedder:  embedder,
		batchSize: domain.DefaultEmbedBatchSize,
		workers:   defaultWorkers,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx, nil
}

// Path returns the database file path.
func (idx *VectorIndex) Path() string {
	return idx.path
}

// Exists reports whether the database file is present.
func (idx *VectorIndex) Exists() bool {
	info, err := os.Stat(idx.path)
	return err == nil && !info.IsDir()
}

// Size returns the number of searchable vectors.
func (idx *VectorIndex) Size() int {
	snap := idx.current.Load()
	if snap == nil || !snap.info.State.Serviceable() {
		return 0
	}
	return len(snap.entries)
}

// Info describes the current index. While a build runs over an index that
// cannot serve searches, the state is reported as building.
func (idx *VectorIndex) Info() domain.IndexInfo {
	info := domain.IndexInfo{State: domain.IndexStateAbsent}
	if snap := idx.current.Load(); snap != nil {
		info = snap.info
	}
	if idx.building.Load() && !info.State.Serviceable() {
		info.State = domain.IndexStateBuilding
	}
	return info
}

// Close drops the in-memory snapshot. The persisted file is kept.
func (idx *VectorIndex) Close() error {
	idx.current.Store(nil)
	return nil
}

// Load reads the persisted index into memory without calling the embedder.
func (idx *VectorIndex) Load(ctx context.Context) (domain.IndexInfo, error) {
	if !idx.Exists() {
		return idx.Info(), fmt.Errorf("%w: %s", domain.ErrIndexAbsent, idx.path)
	}

	snap, err := readSnapshot(ctx, idx.path)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return idx.Info(), err
		}
		idx.current.Store(&snapshot{info: domain.IndexInfo{State: domain.IndexStateCorrupt}})
		return idx.Info(), fmt.Errorf("%w: %v", domain.ErrIndexCorrupt, err)
	}

	if model := idx.embedder.ModelName(); snap.info.EmbeddingModel != model {
		info := snap.info
		info.State = domain.IndexStateStale
		info.Size = 0
		idx.current.Store(&snapshot{info: info})
		return info, fmt.Errorf("%w: index built with %q, configured model is %q",
			domain.ErrIndexStale, snap.info.EmbeddingModel, model)
	}

	idx.current.Store(snap)
	logger.Debug("loaded vector index: %d vectors, model %s", snap.info.Size, snap.info.EmbeddingModel)
	return snap.info, nil
}

// readSnapshot decodes the database at path.
func readSnapshot(ctx context.Context, path string) (*snapshot, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var (
		version int
		count   int
		info    = domain.IndexInfo{State: domain.IndexStateLoaded}
	)
	row := db.QueryRowContext(ctx, `
		SELECT format_version, embedding_model, dimensions, chunk_count, built_at
		FROM index_meta WHERE id = 1
	`)
	if err := row.Scan(&version, &info.EmbeddingModel, &info.Dimensions, &count, &info.BuiltAt); err != nil {
		return nil, fmt.Errorf("reading index metadata: %w", err)
	}
	if version != formatVersion {
		return nil, fmt.Errorf("unsupported format version %d", version)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT chunk_id, source, file_type, page, position, text, embedding
		FROM vectors ORDER BY ordinal
	`)
	if err != nil {
		return nil, fmt.Errorf("reading vectors: %w", err)
	}
	defer rows.Close()

	entries := make([]entry, 0, count)
	for rows.Next() {
		var (
			e        entry
			fileType string
			blob     []byte
		)
		if err := rows.Scan(&e.chunk.ID, &e.chunk.Metadata.Source, &fileType,
			&e.chunk.Metadata.Page, &e.chunk.Position, &e.chunk.Text, &blob); err != nil {
			return nil, fmt.Errorf("scanning vector: %w", err)
		}
		e.chunk.Metadata.FileType = domain.FileType(fileType)

		vector, ok := bytesToFloat32Slice(blob)
		if !ok || len(vector) != info.Dimensions {
			return nil, fmt.Errorf("vector %s has %d bytes, want %d dimensions",
				e.chunk.ID, len(blob), info.Dimensions)
		}
		e.vector = vector
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading vectors: %w", err)
	}
	if len(entries) != count {
		return nil, fmt.Errorf("metadata lists %d vectors, found %d", count, len(entries))
	}

	info.Size = len(entries)
	return &snapshot{info: info, entries: entries}, nil
}

// Build embeds chunks and replaces the index on disk and in memory.
// On any failure the previous index stays in place.
func (idx *VectorIndex) Build(ctx context.Context, chunks []domain.Chunk) (domain.IndexInfo, error) {
	if !idx.buildMu.TryLock() {
		return idx.Info(), domain.ErrBuildInProgress
	}
	defer idx.buildMu.Unlock()

	idx.building.Store(true)
	defer idx.building.Store(false)

	logger.Info("embedding %d chunks with %s", len(chunks), idx.embedder.ModelName())
	vectors, err := idx.embedAll(ctx, chunks)
	if err != nil {
		return idx.Info(), fmt.Errorf("embedding chunks: %w", err)
	}

	dimensions := 0
	entries := make([]entry, len(chunks))
	for i, chunk := range chunks {
		if i == 0 {
			dimensions = len(vectors[i])
		}
		if len(vectors[i]) == 0 || len(vectors[i]) != dimensions {
			return idx.Info(), fmt.Errorf("%w: chunk %d has %d dimensions, want %d",
				domain.ErrIndexCorrupt, i, len(vectors[i]), dimensions)
		}
		entries[i] = entry{chunk: chunk, vector: vectors[i]}
	}

	snap := &snapshot{
		info: domain.IndexInfo{
			State:          domain.IndexStateReady,
			Size:           len(entries),
			EmbeddingModel: idx.embedder.ModelName(),
			Dimensions:     dimensions,
			BuiltAt:        time.Now().UTC(),
		},
		entries: entries,
	}

	if err := idx.persist(ctx, snap); err != nil {
		return idx.Info(), err
	}
	idx.current.Store(snap)
	logger.Info("vector index ready: %d vectors", len(entries))
	return snap.info, nil
}

// embedAll embeds chunk texts in batches on a bounded worker pool.
// Results keep the order of chunks.
func (idx *VectorIndex) embedAll(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))
	if len(chunks) == 0 {
		return vectors, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(idx.workers)

	for start := 0; start < len(chunks); start += idx.batchSize {
		end := min(start+idx.batchSize, len(chunks))
		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Text)
		}

		g.Go(func() error {
			batch, err := idx.embedder.EmbedBatch(gctx, texts)
			if err != nil {
				return err
			}
			if len(batch) != len(texts) {
				return fmt.Errorf("%w: got %d embeddings for %d texts",
					domain.ErrEmbeddingUnavailable, len(batch), len(texts))
			}
			copy(vectors[start:end], batch)
			logger.Debug("embedded chunks %d-%d", start, end-1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// persist writes the snapshot to a temporary database and renames it over
// the index file.
func (idx *VectorIndex) persist(ctx context.Context, snap *snapshot) error {
	if err := os.MkdirAll(idx.dir, 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	tmpPath := idx.path + ".tmp"
	_ = os.Remove(tmpPath)

	if err := writeSnapshot(ctx, tmpPath, snap); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, idx.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replacing index file: %w", err)
	}
	return nil
}

func writeSnapshot(ctx context.Context, path string, snap *snapshot) error {
	db, err := openDB(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrate(db, migrations.FS); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	info := snap.info
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO index_meta (id, format_version, embedding_model, dimensions, chunk_count, built_at)
		VALUES (1, ?, ?, ?, ?, ?)
	`, formatVersion, info.EmbeddingModel, info.Dimensions, len(snap.entries), info.BuiltAt); err != nil {
		return fmt.Errorf("writing index metadata: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vectors (ordinal, chunk_id, source, file_type, page, position, text, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing vector insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range snap.entries {
		if _, err := stmt.ExecContext(ctx, i, e.chunk.ID, e.chunk.Metadata.Source,
			string(e.chunk.Metadata.FileType), e.chunk.Metadata.Page, e.chunk.Position,
			e.chunk.Text, float32SliceToBytes(e.vector)); err != nil {
			return fmt.Errorf("writing vector %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing index: %w", err)
	}
	return nil
}

// Search returns the k most similar chunks, best first. Equal scores keep
// insertion order. An index that cannot serve searches returns no hits
// without calling the embedder.
func (idx *VectorIndex) Search(ctx context.Context, query string, k int) ([]domain.SearchHit, error) {
	snap := idx.current.Load()
	if k <= 0 || snap == nil || !snap.info.State.Serviceable() || len(snap.entries) == 0 {
		return []domain.SearchHit{}, nil
	}

	vector, err := idx.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vector) != snap.info.Dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrIndexStale, len(vector), snap.info.Dimensions)
	}

	hits := make([]domain.SearchHit, len(snap.entries))
	for i, e := range snap.entries {
		hits[i] = domain.SearchHit{Chunk: e.chunk, Score: cosineSimilarity(vector, e.vector)}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}
