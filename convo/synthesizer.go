package convo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/poiesic/placefinder/ai"
	"github.com/poiesic/placefinder/core"
)

// SynthesizeQuery condenses the conversation history into one retrieval
// query. Without a chat model, or when the model call fails or returns
// nothing, it falls back to the content of the most recent message.
func (p *Pipeline) SynthesizeQuery(ctx context.Context, history []core.ConversationMessage) string {
	if p.chat == nil {
		return lastMessage(history)
	}

	payload, err := json.Marshal(history)
	if err != nil {
		p.logger.Warn("failed to encode history, falling back to last message", "err", err)
		return lastMessage(history)
	}

	ctx, cancel := context.WithTimeout(ctx, p.llmTimeout)
	defer cancel()

	query, err := p.chat.Complete(ctx, []ai.ChatMessage{
		{Role: ai.RoleSystem, Content: synthesizeSystemPrompt},
		{Role: ai.RoleUser, Content: fmt.Sprintf(synthesizeUserPrompt, payload)},
	}, synthesizeTemperature, llmMaxTokens)
	if err != nil {
		p.logger.Warn("query synthesis failed, falling back to last message", "err", err)
		return lastMessage(history)
	}
	if query == "" {
		return lastMessage(history)
	}

	p.logger.Debug("synthesized search query", "query", query)
	return query
}
