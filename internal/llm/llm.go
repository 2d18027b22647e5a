// Package llm wraps OpenAI-compatible chat completion for answer generation and summaries.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hyperjump/kioku/internal/config"
	openai "github.com/sashabaranov/go-openai"
)

// NewClient builds a client for the configured OpenAI-compatible endpoint.
func NewClient(cfg config.OpenAIConfig) *openai.Client {
	c := openai.DefaultConfig(cfg.APIKey())
	if cfg.BaseURL != "" {
		c.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return openai.NewClientWithConfig(c)
}

// Chat sends single-turn chat completions to one model.
type Chat struct {
	client    *openai.Client
	model     string
	maxTokens int
	system    string
}

// NewChat returns a Chat for model. system is sent as the system message when non-empty.
func NewChat(client *openai.Client, model string, maxTokens int, system string) (*Chat, error) {
	if client == nil {
		return nil, errors.New("openai client is required")
	}
	if model == "" {
		return nil, errors.New("model is required")
	}
	return &Chat{client: client, model: model, maxTokens: maxTokens, system: system}, nil
}

// Generate returns the first choice's content for prompt.
func (c *Chat) Generate(ctx context.Context, prompt string) (string, error) {
	var messages []openai.ChatCompletionMessage
	if c.system != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: c.system})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
