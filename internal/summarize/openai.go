package summarize

import (
	"context"
	"errors"
	"fmt"
)

// Generator completes a prompt. *llm.Chat satisfies it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OpenAIModel asks a chat model for an abstractive summary.
type OpenAIModel struct {
	gen Generator
}

// NewOpenAIModel returns a model that summarizes through gen.
func NewOpenAIModel(gen Generator) *OpenAIModel {
	return &OpenAIModel{gen: gen}
}

func (m *OpenAIModel) Summarize(ctx context.Context, text string, minWords, maxWords int) (string, error) {
	if m.gen == nil {
		return "", errors.New("no generator configured")
	}
	return m.gen.Generate(ctx, SummaryPrompt(text, minWords, maxWords))
}

// SummaryPrompt is the instruction sent to chat models.
func SummaryPrompt(text string, minWords, maxWords int) string {
	return fmt.Sprintf("Summarize the following text in %d to %d words. Reply with the summary only.\n\n%s",
		minWords, maxWords, text)
}
