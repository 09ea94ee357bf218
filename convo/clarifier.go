package convo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/poiesic/placefinder/ai"
	"github.com/poiesic/placefinder/core"
)

// Clarify generates a follow-up question that helps narrow down what the
// user is looking for. Without a chat model, or when the model call fails
// or returns nothing, it falls back to a fixed question so the result is
// never empty.
func (p *Pipeline) Clarify(ctx context.Context, history []core.ConversationMessage) string {
	if p.chat == nil {
		return fallbackQuestion
	}

	payload, err := json.Marshal(history)
	if err != nil {
		p.logger.Warn("failed to encode history, using fallback question", "err", err)
		return fallbackQuestion
	}

	ctx, cancel := context.WithTimeout(ctx, p.llmTimeout)
	defer cancel()

	question, err := p.chat.Complete(ctx, []ai.ChatMessage{
		{Role: ai.RoleSystem, Content: clarifySystemPrompt},
		{Role: ai.RoleUser, Content: fmt.Sprintf(clarifyUserPrompt, payload)},
	}, clarifyTemperature, llmMaxTokens)
	if err != nil {
		p.logger.Warn("clarifying question generation failed, using fallback", "err", err)
		return fallbackQuestion
	}
	if question == "" {
		return fallbackQuestion
	}

	return question
}
