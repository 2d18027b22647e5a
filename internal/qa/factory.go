package qa

import (
	"fmt"

	"github.com/hyperjump/kioku/internal/config"
	"github.com/hyperjump/kioku/internal/llm"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const generativeSystem = "You answer questions strictly from the provided context."

// New builds the Answerer for the configured mode. client is only used in generative mode.
func New(cfg config.QAConfig, retriever Retriever, client *openai.Client, logger *zap.Logger) (*Answerer, error) {
	var strategy Strategy
	switch cfg.Mode {
	case config.QAModeExtractive, "":
		strategy = NewExtractive(NewLexicalReader(), cfg.MinScore)
	case config.QAModeGenerative:
		chat, err := llm.NewChat(client, cfg.Model, cfg.MaxTokens, generativeSystem)
		if err != nil {
			return nil, fmt.Errorf("generative qa: %w", err)
		}
		strategy = NewGenerative(chat)
	default:
		return nil, fmt.Errorf("unknown qa mode: %s", cfg.Mode)
	}
	return NewAnswerer(retriever, strategy,
		WithTopK(cfg.TopK),
		WithMaxDistance(cfg.MaxDistance),
		WithLogger(logger),
	)
}
