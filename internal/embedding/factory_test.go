package embedding

import (
	"testing"

	"github.com/hyperjump/kioku/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Hash(t *testing.T) {
	e, err := New(config.EmbeddingConfig{Provider: config.EmbeddingHash, Dimensions: 32, CacheSize: 4}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 32, e.Dimensions())
	_, cached := e.(*CachedEmbedder)
	assert.True(t, cached)
}

func TestNew_OpenAIRequiresClient(t *testing.T) {
	_, err := New(config.EmbeddingConfig{Provider: config.EmbeddingOpenAI, Dimensions: 384}, nil, nil)
	assert.Error(t, err)
}

func TestNew_Unknown(t *testing.T) {
	_, err := New(config.EmbeddingConfig{Provider: "word2vec"}, nil, nil)
	assert.Error(t, err)
}

func TestNew_ONNXMissingVocab(t *testing.T) {
	_, err := New(config.EmbeddingConfig{
		Provider:  config.EmbeddingONNX,
		ModelPath: "/nonexistent/model.onnx",
		VocabPath: "/nonexistent/vocab.txt",
	}, nil, nil)
	assert.Error(t, err)
}
