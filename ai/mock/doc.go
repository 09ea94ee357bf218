// Package mock provides test double implementations of the AI service
// interfaces.
//
// The mocks allow tests to run without external model services and enable
// controlled, deterministic behavior:
//
//   - MockEmbedder: returns deterministic vectors based on text hash
//   - MockChatCompleter: echoes the last message content
//   - MockProvider: aggregates the two; pass a nil chat to simulate an
//     absent chat model
//
// Custom behavior is injected via function fields:
//
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return []float32{0.1, 0.2, 0.3}, nil
//	}
//	count := embedder.CallCount()
package mock
