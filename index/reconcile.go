// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package index

import (
	"context"
	"fmt"

	"github.com/poiesic/placefinder/core"
)

// ReconcileStats summarizes one reconciliation pass.
type ReconcileStats struct {
	Deleted    int
	Reembedded int
	Inserted   int
	Failed     int
}

// Reconcile performs a full catalog-to-collection reconciliation. Unlike
// Sync it handles a catalog that shrank or changed in place:
//
//   - stored ids absent from the catalog are deleted
//   - stored entries whose content hash no longer matches their catalog
//     document are re-embedded and overwritten
//   - catalog ids absent from the collection are inserted
//
// Re-embedding and insertion go through the same batched worker pool as
// Sync, with the same per-batch failure isolation.
func (ix *Index) Reconcile(ctx context.Context, documents []string, metadatas []map[string]string, ids []string) (*ReconcileStats, error) {
	if len(documents) != len(ids) || len(metadatas) != len(ids) {
		return nil, ErrLengthMismatch
	}

	existing, err := ix.collection.ExistingIds(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	existingSet := make(map[string]bool, len(existing))
	for _, id := range existing {
		existingSet[id] = true
	}

	expected := make(map[string]int, len(ids))
	for i, id := range ids {
		expected[id] = i
	}

	stats := &ReconcileStats{}

	var stale []string
	for _, id := range existing {
		if _, ok := expected[id]; !ok {
			stale = append(stale, id)
		}
	}
	if len(stale) > 0 {
		if err := ix.collection.Delete(ctx, stale...); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
		}
		stats.Deleted = len(stale)
		ix.logger.Info("deleted stale entries", "count", len(stale))
	}

	var shared []string
	for _, id := range existing {
		if _, ok := expected[id]; ok {
			shared = append(shared, id)
		}
	}

	var pending []batchItem
	if len(shared) > 0 {
		entries, err := ix.collection.Get(ctx, shared...)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
		}
		for _, entry := range entries {
			i := expected[entry.Id]
			if entry.Hash != core.HashContent(documents[i]) {
				pending = append(pending, batchItem{documents[i], metadatas[i], entry.Id})
				stats.Reembedded++
			}
		}
	}

	for i, id := range ids {
		if !existingSet[id] {
			pending = append(pending, batchItem{documents[i], metadatas[i], id})
			stats.Inserted++
		}
	}

	if len(pending) > 0 {
		ix.logger.Info("reconciling entries",
			"reembedded", stats.Reembedded, "inserted", stats.Inserted)
		stats.Failed = ix.insertBatches(ctx, pending)
	}

	ix.logger.Info("reconciliation finished",
		"deleted", stats.Deleted, "reembedded", stats.Reembedded,
		"inserted", stats.Inserted, "failedBatches", stats.Failed)
	return stats, nil
}
