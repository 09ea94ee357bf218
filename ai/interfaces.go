package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use, and deterministic:
// identical input must produce an identical vector across calls and process
// restarts, or index synchronization loses its idempotence.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ChatMessage is one message handed to a chat model.
type ChatMessage struct {
	// Role is one of "system", "user", "assistant".
	Role string

	// Content is the message text.
	Content string
}

// Chat message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatCompleter produces a single text completion from a chat transcript.
// Implementations must be thread-safe for concurrent use.
type ChatCompleter interface {
	// Complete sends the messages to the model and returns the generated
	// text. temperature controls sampling randomness; maxTokens caps the
	// output length. Returns an error on any provider failure; callers are
	// expected to degrade to their own fallbacks.
	Complete(ctx context.Context, messages []ChatMessage, temperature float64, maxTokens int) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and
// lifecycle management. A provider creates and manages the Embedder and,
// when configured, the ChatCompleter, ensuring they share configuration.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Chat returns the chat completion service, or nil when no chat model
	// is configured. Dependents must branch explicitly on absence and fall
	// back to their deterministic behavior.
	Chat() ChatCompleter

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
