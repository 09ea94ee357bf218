package mock

import (
	"context"
	"strings"

	"github.com/poiesic/placefinder/ai"
)

// MockChatCompleter is a test double for ai.ChatCompleter.
// It allows custom behavior injection via function fields.
type MockChatCompleter struct {
	// CompleteFunc is called by Complete if set.
	// If nil, uses default echo behavior.
	CompleteFunc func(ctx context.Context, messages []ai.ChatMessage, temperature float64, maxTokens int) (string, error)

	callCount int
}

// NewMockChatCompleter creates a mock chat completer with default behavior.
// Note: Returns concrete type to allow test assertions via call counts.
func NewMockChatCompleter() *MockChatCompleter {
	return &MockChatCompleter{}
}

// Complete returns a canned completion derived from the last message.
// Default behavior: echoes the last message content prefixed with "mock:".
func (m *MockChatCompleter) Complete(ctx context.Context, messages []ai.ChatMessage, temperature float64, maxTokens int) (string, error) {
	m.callCount++

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, messages, temperature, maxTokens)
	}

	if len(messages) == 0 {
		return "", nil
	}
	last := messages[len(messages)-1]
	return strings.TrimSpace("mock: " + last.Content), nil
}

// CallCount returns the number of times Complete was called.
func (m *MockChatCompleter) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom function.
func (m *MockChatCompleter) Reset() {
	m.callCount = 0
	m.CompleteFunc = nil
}
