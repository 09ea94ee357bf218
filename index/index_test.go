package index

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/placefinder/ai/mock"
	"github.com/poiesic/placefinder/core"
	"github.com/poiesic/placefinder/storage/badger"
)

func testCatalog() (documents []string, metadatas []map[string]string, ids []string) {
	documents = []string{
		"Title: Night Safari\nArea: Mandai\nCategory: Attraction",
		"Title: Hawker Centre\nArea: Chinatown\nCategory: Food",
		"Title: Botanic Gardens\nArea: Tanglin\nCategory: Nature",
	}
	metadatas = []map[string]string{
		{"index": "1", "title": "Night Safari"},
		{"index": "2", "title": "Hawker Centre"},
		{"index": "3", "title": "Botanic Gardens"},
	}
	ids = []string{"1", "2", "3"}
	return
}

func TestNew(t *testing.T) {
	col, backend, err := badger.NewMemoryCollection("places")
	require.NoError(t, err)
	defer backend.Close()

	t.Run("requires a collection", func(t *testing.T) {
		_, err := New(nil, mock.NewMockEmbedder())
		assert.ErrorIs(t, err, ErrCollectionRequired)
	})

	t.Run("requires an embedder", func(t *testing.T) {
		_, err := New(col, nil)
		assert.ErrorIs(t, err, ErrEmbedderRequired)
	})

	t.Run("rejects invalid retry options", func(t *testing.T) {
		_, err := New(col, mock.NewMockEmbedder(), WithRetry(0, time.Second))
		assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
	})
}

func TestBuildOrLoad(t *testing.T) {
	ctx := context.Background()
	documents, metadatas, ids := testCatalog()

	t.Run("populates an empty collection", func(t *testing.T) {
		col, backend, err := badger.NewMemoryCollection("places")
		require.NoError(t, err)
		defer backend.Close()

		embedder := mock.NewMockEmbedder()
		ix, err := BuildOrLoad(ctx, col, embedder, documents, metadatas, ids)
		require.NoError(t, err)

		count, err := ix.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
		assert.Greater(t, embedder.CallCount(), 0)
	})

	t.Run("second run performs zero insertions", func(t *testing.T) {
		col, backend, err := badger.NewMemoryCollection("places")
		require.NoError(t, err)
		defer backend.Close()

		embedder := mock.NewMockEmbedder()
		_, err = BuildOrLoad(ctx, col, embedder, documents, metadatas, ids)
		require.NoError(t, err)

		embedder.Reset()
		ix, err := BuildOrLoad(ctx, col, embedder, documents, metadatas, ids)
		require.NoError(t, err)

		assert.Equal(t, 0, embedder.CallCount())
		count, err := ix.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	t.Run("inserts only the missing ids", func(t *testing.T) {
		col, backend, err := badger.NewMemoryCollection("places")
		require.NoError(t, err)
		defer backend.Close()

		embedder := mock.NewMockEmbedder()
		vec, err := embedder.EmbedText(ctx, documents[0])
		require.NoError(t, err)
		require.NoError(t, col.Add(ctx, &core.IndexEntry{
			Id:       "1",
			Document: documents[0],
			Vector:   NormalizeVector(vec),
			Metadata: metadatas[0],
			Hash:     core.HashContent(documents[0]),
		}))

		var embedded []string
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			embedded = append(embedded, texts...)
			out := make([][]float32, len(texts))
			for i := range texts {
				out[i] = make([]float32, 8)
				out[i][0] = 1
			}
			return out, nil
		}

		_, err = BuildOrLoad(ctx, col, embedder, documents, metadatas, ids)
		require.NoError(t, err)

		assert.Len(t, embedded, 2)
		for _, text := range embedded {
			assert.False(t, strings.Contains(text, "Night Safari"))
		}

		count, err := col.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})
}

func TestSync(t *testing.T) {
	ctx := context.Background()
	documents, metadatas, ids := testCatalog()

	t.Run("rejects mismatched lengths", func(t *testing.T) {
		col, backend, err := badger.NewMemoryCollection("places")
		require.NoError(t, err)
		defer backend.Close()

		ix, err := New(col, mock.NewMockEmbedder())
		require.NoError(t, err)

		err = ix.Sync(ctx, documents[:2], metadatas, ids)
		assert.ErrorIs(t, err, ErrLengthMismatch)
	})

	t.Run("a failed batch does not abort the others", func(t *testing.T) {
		col, backend, err := badger.NewMemoryCollection("places")
		require.NoError(t, err)
		defer backend.Close()

		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			if strings.Contains(texts[0], "Hawker") {
				return nil, errors.New("embedding host down")
			}
			out := make([][]float32, len(texts))
			for i, text := range texts {
				out[i] = []float32{float32(len(text)), 1}
			}
			return out, nil
		}

		ix, err := New(col, embedder,
			WithBatchSize(1), WithPoolSize(2), WithRetry(1, time.Millisecond))
		require.NoError(t, err)

		err = ix.Sync(ctx, documents, metadatas, ids)
		require.NoError(t, err)

		existing, err := col.ExistingIds(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"1", "3"}, existing)
	})
}

func TestQuery(t *testing.T) {
	ctx := context.Background()
	documents, metadatas, ids := testCatalog()

	col, backend, err := badger.NewMemoryCollection("places")
	require.NoError(t, err)
	defer backend.Close()

	embedder := mock.NewMockEmbedder()
	ix, err := BuildOrLoad(ctx, col, embedder, documents, metadatas, ids)
	require.NoError(t, err)

	t.Run("the indexed document is its own nearest neighbor", func(t *testing.T) {
		neighbors, err := ix.Query(ctx, documents[1], 3)
		require.NoError(t, err)
		require.Len(t, neighbors, 3)
		assert.Equal(t, "2", neighbors[0].Id)
		assert.InDelta(t, 0.0, neighbors[0].Distance, 1e-5)
	})

	t.Run("distances are ascending", func(t *testing.T) {
		neighbors, err := ix.Query(ctx, documents[0], 3)
		require.NoError(t, err)
		require.Len(t, neighbors, 3)
		for i := 1; i < len(neighbors); i++ {
			assert.LessOrEqual(t, neighbors[i-1].Distance, neighbors[i].Distance)
		}
	})

	t.Run("embedding failure surfaces the error", func(t *testing.T) {
		embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return nil, errors.New("embedding host down")
		}
		defer embedder.Reset()

		_, err := ix.Query(ctx, "anything", 3)
		assert.Error(t, err)
	})
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()
	documents, metadatas, ids := testCatalog()

	col, backend, err := badger.NewMemoryCollection("places")
	require.NoError(t, err)
	defer backend.Close()

	embedder := mock.NewMockEmbedder()
	ix, err := BuildOrLoad(ctx, col, embedder, documents, metadatas, ids)
	require.NoError(t, err)

	// Drop id 3, edit id 2, add id 4.
	documents = []string{
		documents[0],
		documents[1] + "\nPrice: free",
		"Title: Science Centre\nArea: Jurong\nCategory: Attraction",
	}
	metadatas = []map[string]string{
		metadatas[0],
		metadatas[1],
		{"index": "4", "title": "Science Centre"},
	}
	ids = []string{"1", "2", "4"}

	stats, err := ix.Reconcile(ctx, documents, metadatas, ids)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Deleted)
	assert.Equal(t, 1, stats.Reembedded)
	assert.Equal(t, 1, stats.Inserted)
	assert.Equal(t, 0, stats.Failed)

	existing, err := col.ExistingIds(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1", "2", "4"}, existing)

	entries, err := col.Get(ctx, "2")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, core.HashContent(documents[1]), entries[0].Hash)

	t.Run("reconciling an unchanged catalog is a no-op", func(t *testing.T) {
		stats, err := ix.Reconcile(ctx, documents, metadatas, ids)
		require.NoError(t, err)
		assert.Zero(t, stats.Deleted)
		assert.Zero(t, stats.Reembedded)
		assert.Zero(t, stats.Inserted)
	})
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds after transient failures", func(t *testing.T) {
		attempts := 0
		err := RetryWithBackoff(ctx, func() error {
			attempts++
			if attempts < 3 {
				return errors.New("transient")
			}
			return nil
		}, 3, time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("returns the last error when exhausted", func(t *testing.T) {
		wantErr := errors.New("permanent")
		err := RetryWithBackoff(ctx, func() error { return wantErr }, 2, time.Millisecond)
		assert.ErrorIs(t, err, wantErr)
	})

	t.Run("honors context cancellation", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		err := RetryWithBackoff(cancelled, func() error { return nil }, 3, time.Millisecond)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNormalizeVector(t *testing.T) {
	t.Run("produces a unit vector", func(t *testing.T) {
		v := NormalizeVector([]float32{3, 4})
		assert.InDelta(t, 0.6, v[0], 1e-6)
		assert.InDelta(t, 0.8, v[1], 1e-6)
	})

	t.Run("zero vector stays zero", func(t *testing.T) {
		v := NormalizeVector([]float32{0, 0, 0})
		assert.Equal(t, []float32{0, 0, 0}, v)
	})

	t.Run("empty input passes through", func(t *testing.T) {
		assert.Empty(t, NormalizeVector(nil))
	})
}
