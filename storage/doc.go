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


// Package storage provides the vector store abstraction for placefinder.
//
// It defines the Collection interface, a named persistent set of embedded
// index entries with count, membership, add/get/delete and nearest-neighbor
// operations, along with the binary serialization of entries. The semantic
// index depends only on this interface, allowing backends to be swapped.
//
// # Implementations
//
//   - storage/badger: persistent BadgerDB-backed collections, with an
//     in-memory mode for tests
//
// Public constructors return the Collection interface to prevent coupling
// to backend specifics.
//
// # Thread Safety
//
// Collections support concurrent readers. Concurrent population of the same
// collection is not isolated; the index layer assumes a single writer.
package storage
