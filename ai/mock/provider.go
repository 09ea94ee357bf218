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


package mock

import "github.com/poiesic/placefinder/ai"

// MockProvider is a test double for ai.AIProvider.
// It aggregates mock embedder and chat completer instances.
type MockProvider struct {
	embedder *MockEmbedder
	chat     *MockChatCompleter
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.AIProvider interface for consistency with production constructors.
// Use GetMockEmbedder()/GetMockChat() to access concrete types for assertions.
func NewMockProvider() ai.AIProvider {
	return &MockProvider{
		embedder: NewMockEmbedder(),
		chat:     NewMockChatCompleter(),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
// Pass a nil chat to simulate a provider running without a chat model.
func NewMockProviderWithServices(embedder *MockEmbedder, chat *MockChatCompleter) ai.AIProvider {
	return &MockProvider{
		embedder: embedder,
		chat:     chat,
	}
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// Chat returns the mock chat completer, or nil when absent.
func (p *MockProvider) Chat() ai.ChatCompleter {
	if p.chat == nil {
		return nil
	}
	return p.chat
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder returns the underlying mock embedder for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockChat returns the underlying mock chat completer for test assertions.
func (p *MockProvider) GetMockChat() *MockChatCompleter {
	return p.chat
}
