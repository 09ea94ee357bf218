package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/placefinder/core"
	"github.com/poiesic/placefinder/storage"
)

// Collection implements storage.Collection for BadgerDB.
type Collection struct {
	backend *Backend
	name    string
	metric  storage.Metric
	logger  *slog.Logger
}

var _ storage.Collection = (*Collection)(nil)

// OpenCollection opens the named collection, creating it with the given
// metric if it does not exist yet. Reopening an existing collection with a
// different metric returns storage.ErrMetricMismatch.
//
// Returns storage.Collection interface to enforce abstraction.
func OpenCollection(backend *Backend, name string, metric storage.Metric) (storage.Collection, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: collection name required", storage.ErrInvalidQuery)
	}

	metaKey := makeCollectionMetaKey(name)
	err := backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(metaKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			if err := tx.Set(metaKey, []byte(metric)); err != nil {
				return err
			}
			return tx.Commit()
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if storage.Metric(val) != metric {
				return fmt.Errorf("%w: collection %q has metric %q, requested %q",
					storage.ErrMetricMismatch, name, val, metric)
			}
			return nil
		})
	}, true)
	if err != nil {
		return nil, err
	}

	return &Collection{
		backend: backend,
		name:    name,
		metric:  metric,
		logger:  slog.Default().With("component", "badger-collection", "collection", name),
	}, nil
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Metric returns the distance metric the collection was created with.
func (c *Collection) Metric() storage.Metric {
	return c.metric
}

// Count returns the number of stored entries.
func (c *Collection) Count(ctx context.Context) (int, error) {
	count := 0
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeEntryScanPrefix(c.name)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ExistingIds returns the ids of all stored entries.
func (c *Collection) ExistingIds(ctx context.Context) ([]string, error) {
	prefix := makeEntryScanPrefix(c.name)
	var ids []string
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			ids = append(ids, strings.TrimPrefix(string(key), string(prefix)))
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Add stores the given entries, overwriting any existing entry with the
// same id.
func (c *Collection) Add(ctx context.Context, entries ...*core.IndexEntry) error {
	return c.backend.WithTx(func(tx *badger.Txn) error {
		for _, entry := range entries {
			if err := core.ValidateEntry(entry); err != nil {
				return err
			}
			key := makeEntryKey(c.name, entry.Id)
			if err := tx.Set(key, storage.MarshalIndexEntry(entry)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Get retrieves entries by id. Missing ids are skipped.
func (c *Collection) Get(ctx context.Context, ids ...string) ([]*core.IndexEntry, error) {
	entries := make([]*core.IndexEntry, 0, len(ids))
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			item, err := tx.Get(makeEntryKey(c.name, id))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			err = item.Value(func(val []byte) error {
				entry, err := storage.UnmarshalIndexEntry(val)
				if err != nil {
					return err
				}
				entries = append(entries, entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Delete removes entries by id. Missing ids are ignored.
func (c *Collection) Delete(ctx context.Context, ids ...string) error {
	return c.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			if err := tx.Delete(makeEntryKey(c.name, id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// NearestNeighbors scans the collection and returns up to limit entries
// closest to the given vector, ordered by ascending cosine distance.
// Stored and query vectors are expected to be L2-normalized, so the
// distance reduces to 1 - dot product.
func (c *Collection) NearestNeighbors(ctx context.Context, vector []float32, limit int) ([]*core.Neighbor, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}

	var neighbors []*core.Neighbor
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeEntryScanPrefix(c.name)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var entry *core.IndexEntry
			err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalIndexEntry(val)
				return err
			})
			if err != nil {
				return err
			}

			// Skip entries without embeddings
			if len(entry.Vector) == 0 {
				continue
			}

			neighbors = append(neighbors, &core.Neighbor{
				Id:       entry.Id,
				Distance: 1 - dotProduct(vector, entry.Vector),
				Metadata: entry.Metadata,
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Sort by distance ascending; stable so ties keep scan order
	slices.SortStableFunc(neighbors, func(a, b *core.Neighbor) int {
		if a.Distance < b.Distance {
			return -1
		}
		if a.Distance > b.Distance {
			return 1
		}
		return 0
	})

	if len(neighbors) > limit {
		neighbors = neighbors[:limit]
	}
	return neighbors, nil
}

// Close releases resources held by the collection. The underlying backend
// stays open; it may serve other collections.
func (c *Collection) Close() error {
	return nil
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
