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


// Package index maintains the semantic index over the place catalog.
//
// The index pairs a persistent vector collection with an embedding
// provider. BuildOrLoad brings the collection up to date at startup with
// an append-only, idempotent sync: missing documents are embedded and
// inserted in batches through a worker pool, and a batch failure never
// aborts the remaining batches. Reconcile performs the heavier full pass
// that also deletes stale entries and re-embeds changed documents.
//
// Stored vectors are L2-normalized, so cosine distance against a
// normalized query vector reduces to 1 - dot product.
package index
