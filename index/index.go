package index

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/placefinder/ai"
	"github.com/poiesic/placefinder/core"
	"github.com/poiesic/placefinder/storage"
)

const (
	// defaultBatchSize bounds the size of one embed-and-insert request.
	defaultBatchSize = 100

	defaultMaxRetries = 3
	defaultRetryDelay = 1 * time.Second
)

// Index is the semantic index over the catalog: a persistent vector
// collection paired with the embedder that populates and queries it.
//
// Population is append-only and idempotent. Concurrent readers are fine;
// at most one populating writer is assumed per collection.
type Index struct {
	collection storage.Collection
	embedder   ai.Embedder
	batchSize  int
	poolSize   int
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger
}

// Option configures an Index.
type Option func(*Index) error

// WithBatchSize sets the insertion batch size.
// Default is 100.
func WithBatchSize(size int) Option {
	return func(ix *Index) error {
		if size < 1 {
			size = 1
		}
		ix.batchSize = size
		return nil
	}
}

// WithPoolSize sets the worker pool size for concurrent batch insertion.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(ix *Index) error {
		if size < 1 {
			size = 1
		}
		ix.poolSize = size
		return nil
	}
}

// WithRetry sets the retry policy for embedding calls during population.
// Defaults are 3 attempts with a 1s base delay.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(ix *Index) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		ix.maxRetries = maxAttempts
		ix.retryDelay = baseDelay
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Index) error {
		if logger == nil {
			logger = slog.Default()
		}
		ix.logger = logger
		return nil
	}
}

// New creates an index over the given collection and embedder without
// synchronizing it. Most callers want BuildOrLoad instead.
func New(collection storage.Collection, embedder ai.Embedder, opts ...Option) (*Index, error) {
	if collection == nil {
		return nil, ErrCollectionRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	ix := &Index{
		collection: collection,
		embedder:   embedder,
		batchSize:  defaultBatchSize,
		poolSize:   poolSize,
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
		logger:     slog.Default().With("component", "index"),
	}

	for _, opt := range opts {
		if err := opt(ix); err != nil {
			return nil, err
		}
	}

	return ix, nil
}

// BuildOrLoad opens the index over the collection and brings it up to date
// with the prepared catalog documents. When the stored entry count already
// covers the expected documents the collection is returned as-is; otherwise
// the missing ids are inserted in batches.
//
// Returns ErrIndexUnavailable when the collection cannot be read.
func BuildOrLoad(ctx context.Context, collection storage.Collection, embedder ai.Embedder,
	documents []string, metadatas []map[string]string, ids []string, opts ...Option) (*Index, error) {
	ix, err := New(collection, embedder, opts...)
	if err != nil {
		return nil, err
	}
	if err := ix.Sync(ctx, documents, metadatas, ids); err != nil {
		return nil, err
	}
	return ix, nil
}

// batchItem is one pending insertion.
type batchItem struct {
	document string
	metadata map[string]string
	id       string
}

// Sync brings the collection up to date with the prepared documents.
//
// The sync is append-only and idempotent: entries are never updated or
// deleted, only ids absent from the collection are inserted, and re-running
// against an unchanged catalog performs zero insertions. A shrunken catalog
// or edited record is not reconciled here; see Reconcile.
func (ix *Index) Sync(ctx context.Context, documents []string, metadatas []map[string]string, ids []string) error {
	if len(documents) != len(ids) || len(metadatas) != len(ids) {
		return ErrLengthMismatch
	}

	count, err := ix.collection.Count(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}

	if count >= len(ids) {
		ix.logger.Info("collection is up to date", "collection", ix.collection.Name(), "entries", count)
		return nil
	}

	ix.logger.Warn("collection seems incomplete, re-populating",
		"collection", ix.collection.Name(), "stored", count, "expected", len(ids))

	existing, err := ix.collection.ExistingIds(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	existingSet := make(map[string]bool, len(existing))
	for _, id := range existing {
		existingSet[id] = true
	}

	var missing []batchItem
	for i, id := range ids {
		if !existingSet[id] {
			missing = append(missing, batchItem{documents[i], metadatas[i], id})
		}
	}

	if len(missing) == 0 {
		ix.logger.Info("no new documents to add")
		return nil
	}

	ix.logger.Info("adding new documents to the collection", "count", len(missing))
	failed := ix.insertBatches(ctx, missing)
	if failed > 0 {
		// Failed batches leave their ids absent and eligible for a future sync.
		ix.logger.Warn("sync finished with failed batches", "failedBatches", failed)
	} else {
		ix.logger.Info("finished adding documents")
	}
	return nil
}

// insertBatches embeds and stores items in fixed-size batches through a
// worker pool. A failed batch is logged and skipped, never aborting the
// remaining batches. Returns the number of failed batches.
func (ix *Index) insertBatches(ctx context.Context, items []batchItem) int {
	pool, err := ants.NewPool(ix.poolSize)
	if err != nil {
		ix.logger.Error("failed to create worker pool, inserting sequentially", "err", err)
		pool = nil
	} else {
		defer pool.Release()
	}

	var wg sync.WaitGroup
	var failed atomic.Int64
	total := (len(items) + ix.batchSize - 1) / ix.batchSize

	for i := 0; i < len(items); i += ix.batchSize {
		batch := items[i:min(i+ix.batchSize, len(items))]
		batchNum := i/ix.batchSize + 1

		run := func() {
			defer wg.Done()
			if err := ix.insertBatch(ctx, batch); err != nil {
				failed.Add(1)
				ix.logger.Error("error adding batch to collection",
					"batch", batchNum, "batches", total, "err", err)
				return
			}
			ix.logger.Info("added batch", "batch", batchNum, "batches", total)
		}

		wg.Add(1)
		if pool == nil {
			run()
			continue
		}
		if err := pool.Submit(run); err != nil {
			run()
		}
	}

	wg.Wait()
	return int(failed.Load())
}

// insertBatch embeds one batch and stores the resulting entries.
// Vectors are normalized so cosine distance reduces to 1 - dot product.
func (ix *Index) insertBatch(ctx context.Context, batch []batchItem) error {
	texts := make([]string, len(batch))
	for i, item := range batch {
		texts[i] = item.document
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = ix.embedder.EmbedTexts(ctx, texts)
		return err
	}, ix.maxRetries, ix.retryDelay)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", ix.maxRetries, err)
	}
	if len(embeddings) != len(batch) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(batch), len(embeddings))
	}

	now := time.Now().UTC()
	entries := make([]*core.IndexEntry, len(batch))
	for i, item := range batch {
		entries[i] = &core.IndexEntry{
			Id:         item.id,
			Document:   item.document,
			Vector:     NormalizeVector(embeddings[i]),
			Metadata:   item.metadata,
			Hash:       core.HashContent(item.document),
			InsertedAt: now,
		}
	}
	return ix.collection.Add(ctx, entries...)
}

// Query embeds the text and returns up to k nearest entries, ordered by
// ascending cosine distance.
func (ix *Index) Query(ctx context.Context, text string, k int) ([]*core.Neighbor, error) {
	vector, err := ix.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	return ix.collection.NearestNeighbors(ctx, NormalizeVector(vector), k)
}

// Count returns the number of stored entries.
func (ix *Index) Count(ctx context.Context) (int, error) {
	return ix.collection.Count(ctx)
}
