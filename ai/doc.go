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


// Package ai provides abstractions for the external model services used by
// placefinder.
//
// Two capabilities are defined: text embedding (Embedder) and chat
// completion (ChatCompleter). The core retrieval and conversation logic
// depends only on these interfaces, never on a concrete provider.
//
// The chat capability is optional. AIProvider.Chat returns nil when no chat
// model is configured, and every dependent component carries a deterministic
// fallback for that case, so the system stays fully functional without an
// LLM.
//
// # Implementation Packages
//
//   - ai/openai: production implementation using OpenAI-compatible APIs
//     via langchaingo
//   - ai/mock: test doubles for unit testing without external services
//
// Production constructors (openai.NewProvider, openai.NewEmbedder) return
// interface types to enforce abstraction. Mock constructors return concrete
// types so tests can inject behavior and assert call counts.
package ai
