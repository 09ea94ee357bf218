package storage

import (
	"context"

	"github.com/poiesic/placefinder/core"
)

// Metric selects the distance metric a collection uses for
// nearest-neighbor queries.
type Metric string

// MetricCosine is cosine distance: 1 - cosine similarity, so 0 means
// identical direction and 2 means opposite.
const MetricCosine Metric = "cosine"

// Collection is a named, persistent set of index entries keyed by stable id.
// It is the vector store boundary of the system: the semantic index is built
// on these operations and nothing else.
//
// Implementations must be thread-safe for concurrent readers. Concurrent
// writers against the same collection are not isolated from each other;
// callers must serialize population externally.
type Collection interface {
	// Name returns the collection name.
	Name() string

	// Metric returns the distance metric the collection was created with.
	Metric() Metric

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)

	// ExistingIds returns the ids of all stored entries, in unspecified order.
	ExistingIds(ctx context.Context) ([]string, error)

	// Add stores the given entries. An entry whose id already exists is
	// overwritten in place.
	Add(ctx context.Context, entries ...*core.IndexEntry) error

	// Get retrieves entries by id. Missing ids are skipped, not an error.
	Get(ctx context.Context, ids ...string) ([]*core.IndexEntry, error)

	// Delete removes entries by id. Missing ids are ignored.
	Delete(ctx context.Context, ids ...string) error

	// NearestNeighbors returns up to limit entries closest to the given
	// vector under the collection metric, ordered by ascending distance.
	// Ties keep the store-native order, which is stable within one query.
	NearestNeighbors(ctx context.Context, vector []float32, limit int) ([]*core.Neighbor, error)

	// Close releases resources held by the collection.
	Close() error
}
