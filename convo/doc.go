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


// Package convo implements the conversation pipeline: for each turn it
// synthesizes a retrieval query from the history, fetches the nearest
// catalog locations, and generates a clarifying question, running the
// question concurrently with retrieval.
//
// The pipeline is built to degrade, not fail. The chat model is optional
// and every model or index error maps to a deterministic fallback, so a
// turn always produces a usable result.
package convo
