package convo

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/placefinder/ai"
	"github.com/poiesic/placefinder/ai/mock"
	"github.com/poiesic/placefinder/core"
)

// stubQuerier is a minimal index stand-in.
type stubQuerier struct {
	queryFunc func(ctx context.Context, text string, k int) ([]*core.Neighbor, error)
	calls     int
}

func (s *stubQuerier) Query(ctx context.Context, text string, k int) ([]*core.Neighbor, error) {
	s.calls++
	if s.queryFunc != nil {
		return s.queryFunc(ctx, text, k)
	}
	return []*core.Neighbor{}, nil
}

func sampleHistory() []core.ConversationMessage {
	return []core.ConversationMessage{
		{Role: core.RoleUser, Content: "Looking for something fun this weekend"},
		{Role: core.RoleAssistant, Content: "What kind of activity do you enjoy?"},
		{Role: core.RoleUser, Content: "Somewhere outdoors with the kids"},
	}
}

func sampleNeighbors() []*core.Neighbor {
	return []*core.Neighbor{
		{Id: "2", Distance: 0.1, Metadata: map[string]string{"index": "2", "title": "Botanic Gardens"}},
		{Id: "1", Distance: 0.4, Metadata: map[string]string{"index": "1", "title": "Night Safari"}},
		{Id: "3", Distance: 0.9, Metadata: map[string]string{"index": "3", "title": "Hawker Centre"}},
	}
}

func TestNewPipeline(t *testing.T) {
	t.Run("requires an index", func(t *testing.T) {
		_, err := NewPipeline(nil, nil)
		assert.ErrorIs(t, err, ErrIndexRequired)
	})

	t.Run("rejects invalid top k", func(t *testing.T) {
		_, err := NewPipeline(&stubQuerier{}, nil, WithTopK(0))
		assert.ErrorIs(t, err, ErrInvalidTopK)
	})

	t.Run("chat is optional", func(t *testing.T) {
		p, err := NewPipeline(&stubQuerier{}, nil)
		require.NoError(t, err)
		assert.NotNil(t, p)
	})
}

func TestSynthesizeQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("without a chat model uses the last message", func(t *testing.T) {
		p, err := NewPipeline(&stubQuerier{}, nil)
		require.NoError(t, err)

		query := p.SynthesizeQuery(ctx, sampleHistory())
		assert.Equal(t, "Somewhere outdoors with the kids", query)
	})

	t.Run("empty history yields an empty query", func(t *testing.T) {
		p, err := NewPipeline(&stubQuerier{}, nil)
		require.NoError(t, err)

		assert.Empty(t, p.SynthesizeQuery(ctx, nil))
	})

	t.Run("uses the chat model when configured", func(t *testing.T) {
		chat := mock.NewMockChatCompleter()
		chat.CompleteFunc = func(ctx context.Context, messages []ai.ChatMessage, temperature float64, maxTokens int) (string, error) {
			assert.InDelta(t, 0.2, temperature, 1e-9)
			assert.Equal(t, 100, maxTokens)
			require.Len(t, messages, 2)
			assert.Equal(t, ai.RoleSystem, messages[0].Role)
			assert.True(t, strings.Contains(messages[1].Content, "outdoors with the kids"))
			return "outdoor family activities", nil
		}

		p, err := NewPipeline(&stubQuerier{}, chat)
		require.NoError(t, err)

		query := p.SynthesizeQuery(ctx, sampleHistory())
		assert.Equal(t, "outdoor family activities", query)
		assert.Equal(t, 1, chat.CallCount())
	})

	t.Run("falls back to the last message on chat errors", func(t *testing.T) {
		chat := mock.NewMockChatCompleter()
		chat.CompleteFunc = func(ctx context.Context, messages []ai.ChatMessage, temperature float64, maxTokens int) (string, error) {
			return "", errors.New("model unavailable")
		}

		p, err := NewPipeline(&stubQuerier{}, chat)
		require.NoError(t, err)

		query := p.SynthesizeQuery(ctx, sampleHistory())
		assert.Equal(t, "Somewhere outdoors with the kids", query)
	})

	t.Run("falls back when the model returns nothing", func(t *testing.T) {
		chat := mock.NewMockChatCompleter()
		chat.CompleteFunc = func(ctx context.Context, messages []ai.ChatMessage, temperature float64, maxTokens int) (string, error) {
			return "", nil
		}

		p, err := NewPipeline(&stubQuerier{}, chat)
		require.NoError(t, err)

		query := p.SynthesizeQuery(ctx, sampleHistory())
		assert.Equal(t, "Somewhere outdoors with the kids", query)
	})
}

func TestClarify(t *testing.T) {
	ctx := context.Background()

	t.Run("without a chat model uses the fixed question", func(t *testing.T) {
		p, err := NewPipeline(&stubQuerier{}, nil)
		require.NoError(t, err)

		question := p.Clarify(ctx, sampleHistory())
		assert.Equal(t, "Could you please provide more details about what you're looking for?", question)
	})

	t.Run("uses the chat model when configured", func(t *testing.T) {
		chat := mock.NewMockChatCompleter()
		chat.CompleteFunc = func(ctx context.Context, messages []ai.ChatMessage, temperature float64, maxTokens int) (string, error) {
			assert.InDelta(t, 0.7, temperature, 1e-9)
			assert.Equal(t, 100, maxTokens)
			return "Which part of Singapore works best for you?", nil
		}

		p, err := NewPipeline(&stubQuerier{}, chat)
		require.NoError(t, err)

		question := p.Clarify(ctx, sampleHistory())
		assert.Equal(t, "Which part of Singapore works best for you?", question)
	})

	t.Run("falls back on chat errors", func(t *testing.T) {
		chat := mock.NewMockChatCompleter()
		chat.CompleteFunc = func(ctx context.Context, messages []ai.ChatMessage, temperature float64, maxTokens int) (string, error) {
			return "", errors.New("model unavailable")
		}

		p, err := NewPipeline(&stubQuerier{}, chat)
		require.NoError(t, err)

		question := p.Clarify(ctx, sampleHistory())
		assert.Equal(t, fallbackQuestion, question)
	})
}

func TestRetrieve(t *testing.T) {
	ctx := context.Background()

	t.Run("maps distances to descending scores", func(t *testing.T) {
		index := &stubQuerier{
			queryFunc: func(ctx context.Context, text string, k int) ([]*core.Neighbor, error) {
				assert.Equal(t, 5, k)
				return sampleNeighbors(), nil
			},
		}
		p, err := NewPipeline(index, nil)
		require.NoError(t, err)

		locations := p.Retrieve(ctx, "family outing")
		require.Len(t, locations, 3)

		assert.Equal(t, "2", locations[0].Id)
		assert.Equal(t, "Botanic Gardens", locations[0].Title)
		assert.InDelta(t, 0.9, locations[0].Score, 1e-6)
		assert.InDelta(t, 0.6, locations[1].Score, 1e-6)
		assert.InDelta(t, 0.1, locations[2].Score, 1e-6)
	})

	t.Run("empty query skips the index", func(t *testing.T) {
		index := &stubQuerier{}
		p, err := NewPipeline(index, nil)
		require.NoError(t, err)

		locations := p.Retrieve(ctx, "   ")
		assert.Empty(t, locations)
		assert.NotNil(t, locations)
		assert.Zero(t, index.calls)
	})

	t.Run("index failure yields an empty slice", func(t *testing.T) {
		index := &stubQuerier{
			queryFunc: func(ctx context.Context, text string, k int) ([]*core.Neighbor, error) {
				return nil, errors.New("index unavailable")
			},
		}
		p, err := NewPipeline(index, nil)
		require.NoError(t, err)

		locations := p.Retrieve(ctx, "family outing")
		assert.Empty(t, locations)
		assert.NotNil(t, locations)
	})

	t.Run("honors a custom top k", func(t *testing.T) {
		index := &stubQuerier{
			queryFunc: func(ctx context.Context, text string, k int) ([]*core.Neighbor, error) {
				assert.Equal(t, 2, k)
				return sampleNeighbors()[:2], nil
			},
		}
		p, err := NewPipeline(index, nil, WithTopK(2))
		require.NoError(t, err)

		locations := p.Retrieve(ctx, "family outing")
		assert.Len(t, locations, 2)
	})
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("returns locations and a question", func(t *testing.T) {
		index := &stubQuerier{
			queryFunc: func(ctx context.Context, text string, k int) ([]*core.Neighbor, error) {
				return sampleNeighbors(), nil
			},
		}
		p, err := NewPipeline(index, nil)
		require.NoError(t, err)

		result := p.Run(ctx, sampleHistory())
		require.NotNil(t, result)
		assert.Len(t, result.RetrievedLocations, 3)
		assert.Equal(t, fallbackQuestion, result.ClarifyingQuestion)
	})

	t.Run("a broken index still produces a question", func(t *testing.T) {
		index := &stubQuerier{
			queryFunc: func(ctx context.Context, text string, k int) ([]*core.Neighbor, error) {
				return nil, errors.New("index unavailable")
			},
		}
		p, err := NewPipeline(index, nil)
		require.NoError(t, err)

		result := p.Run(ctx, sampleHistory())
		require.NotNil(t, result)
		assert.Empty(t, result.RetrievedLocations)
		assert.NotNil(t, result.RetrievedLocations)
		assert.NotEmpty(t, result.ClarifyingQuestion)
	})

	t.Run("empty history retrieves nothing but still asks", func(t *testing.T) {
		index := &stubQuerier{}
		p, err := NewPipeline(index, nil)
		require.NoError(t, err)

		result := p.Run(ctx, nil)
		require.NotNil(t, result)
		assert.Empty(t, result.RetrievedLocations)
		assert.NotEmpty(t, result.ClarifyingQuestion)
		assert.Zero(t, index.calls)
	})
}
