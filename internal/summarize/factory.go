package summarize

import (
	"fmt"

	"github.com/hyperjump/kioku/internal/config"
	"github.com/hyperjump/kioku/internal/llm"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// New builds the Summarizer for the configured provider. client is only used by the
// openai provider.
func New(cfg config.SummarizerConfig, client *openai.Client, logger *zap.Logger) (*Summarizer, error) {
	var model Model
	switch cfg.Provider {
	case config.SummarizerFrequency, "":
		model = NewFrequencyModel()
	case config.SummarizerOpenAI:
		chat, err := llm.NewChat(client, cfg.Model, 2*cfg.MaxLength, "You write faithful, concise summaries.")
		if err != nil {
			return nil, fmt.Errorf("openai summarizer: %w", err)
		}
		model = NewOpenAIModel(chat)
	default:
		return nil, fmt.Errorf("unknown summarizer provider: %s", cfg.Provider)
	}
	return NewSummarizer(model, WithLengths(cfg.MinLength, cfg.MaxLength), WithLogger(logger))
}
