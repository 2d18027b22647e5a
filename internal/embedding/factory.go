package embedding

import (
	"fmt"

	"github.com/hyperjump/kioku/internal/config"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// New builds the embedder selected by cfg.Provider and wraps it in an LRU cache.
// client is only used by the openai provider and may be nil otherwise.
func New(cfg config.EmbeddingConfig, client *openai.Client, logger *zap.Logger) (Embedder, error) {
	var (
		e   Embedder
		err error
	)
	switch cfg.Provider {
	case config.EmbeddingHash:
		e = NewHashEmbedder(cfg.Dimensions)
	case config.EmbeddingOpenAI:
		e, err = NewOpenAIEmbedder(client, cfg.Model, cfg.Dimensions)
	case config.EmbeddingONNX, "":
		e, err = newONNX(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return NewCachedEmbedder(e, cfg.CacheSize), nil
}

func newONNX(cfg config.EmbeddingConfig, logger *zap.Logger) (Embedder, error) {
	tokenizer, err := NewTokenizer(cfg.VocabPath)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}
	if cfg.VocabPath == "" && logger != nil {
		logger.Warn("no vocab_path configured, using hash tokenizer for ONNX embedder")
	}
	e, err := NewONNXEmbedder(cfg.ModelPath, tokenizer, cfg.Dimensions, cfg.MaxTokens)
	if err != nil {
		return nil, err
	}
	return e, nil
}
