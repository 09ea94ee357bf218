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


package convo

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/poiesic/placefinder/ai"
	"github.com/poiesic/placefinder/core"
)

// DefaultTopK is the number of locations retrieved per turn unless
// overridden with WithTopK.
const DefaultTopK = 5

const defaultLLMTimeout = 20 * time.Second

// Querier is the slice of the semantic index the pipeline needs.
type Querier interface {
	Query(ctx context.Context, text string, k int) ([]*core.Neighbor, error)
}

// Pipeline turns a conversation history into retrieved locations plus a
// clarifying question. Every stage degrades rather than fails: a missing
// or erroring LLM falls back to deterministic behavior and a broken index
// yields an empty location list, so Run never returns an error.
type Pipeline struct {
	index      Querier
	chat       ai.ChatCompleter
	topK       int
	llmTimeout time.Duration
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithTopK sets the number of locations retrieved per turn.
// Default is 5.
func WithTopK(k int) Option {
	return func(p *Pipeline) error {
		if k < 1 {
			return ErrInvalidTopK
		}
		p.topK = k
		return nil
	}
}

// WithLLMTimeout bounds each individual chat model call.
// Default is 20s.
func WithLLMTimeout(timeout time.Duration) Option {
	return func(p *Pipeline) error {
		if timeout > 0 {
			p.llmTimeout = timeout
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a conversation pipeline over the given index.
// chat may be nil; the pipeline then uses its deterministic fallbacks.
func NewPipeline(index Querier, chat ai.ChatCompleter, opts ...Option) (*Pipeline, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}

	p := &Pipeline{
		index:      index,
		chat:       chat,
		topK:       DefaultTopK,
		llmTimeout: defaultLLMTimeout,
		logger:     slog.Default().With("component", "convo"),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Run processes one conversation turn. The clarifying question is generated
// concurrently with query synthesis and retrieval since neither depends on
// the other. The result always carries a non-nil location slice and a
// non-empty question.
func (p *Pipeline) Run(ctx context.Context, history []core.ConversationMessage) *core.PipelineResult {
	var wg sync.WaitGroup
	var question string

	wg.Add(1)
	go func() {
		defer wg.Done()
		question = p.Clarify(ctx, history)
	}()

	query := p.SynthesizeQuery(ctx, history)
	locations := p.Retrieve(ctx, query)

	wg.Wait()
	return &core.PipelineResult{
		RetrievedLocations: locations,
		ClarifyingQuestion: question,
	}
}

// lastMessage returns the content of the most recent message, or "" for an
// empty history.
func lastMessage(history []core.ConversationMessage) string {
	if len(history) == 0 {
		return ""
	}
	return history[len(history)-1].Content
}
