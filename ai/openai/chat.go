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


package openai

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/poiesic/placefinder/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ChatCompleter implements ai.ChatCompleter using OpenAI-compatible chat APIs.
type ChatCompleter struct {
	client llms.Model
	logger *slog.Logger
}

// newChatCompleter is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newChatCompleter(config *ai.Config) (*ChatCompleter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if !config.ChatEnabled() {
		return nil, errors.New("openai: no chat model configured")
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken(config.APIToken),
		openai.WithModel(config.ChatModel),
	)
	if err != nil {
		return nil, err
	}

	return &ChatCompleter{
		client: client,
		logger: slog.Default().With("component", "openai-chat"),
	}, nil
}

// NewChatCompleter creates a new chat completer using the provided configuration.
//
// Returns ai.ChatCompleter interface to enforce abstraction.
func NewChatCompleter(config *ai.Config) (ai.ChatCompleter, error) {
	return newChatCompleter(config)
}

// Complete sends the messages to the chat model and returns the generated text.
func (c *ChatCompleter) Complete(ctx context.Context, messages []ai.ChatMessage, temperature float64, maxTokens int) (string, error) {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		content = append(content, llms.MessageContent{
			Role:  chatMessageType(msg.Role),
			Parts: []llms.ContentPart{llms.TextPart(msg.Content)},
		})
	}

	response, err := c.client.GenerateContent(ctx, content,
		llms.WithTemperature(temperature),
		llms.WithMaxTokens(maxTokens))
	if err != nil {
		c.logger.Error("failed to generate completion", "err", err)
		return "", err
	}

	if len(response.Choices) < 1 {
		c.logger.Debug("no choices returned from model")
		return "", errors.New("openai: empty completion response")
	}

	return strings.TrimSpace(response.Choices[0].Content), nil
}

// chatMessageType maps an ai role string onto the langchaingo message type.
func chatMessageType(role string) llms.ChatMessageType {
	switch role {
	case ai.RoleSystem:
		return llms.ChatMessageTypeSystem
	case ai.RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
