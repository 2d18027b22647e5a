package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *openai.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	return openai.NewClientWithConfig(cfg)
}

func TestOpenAIEmbedder_EmbedBatch(t *testing.T) {
	var got openai.EmbeddingRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		// returned out of order on purpose
		_, _ = w.Write([]byte(`{"object":"list","model":"text-embedding-3-small","data":[
			{"object":"embedding","index":1,"embedding":[0,2,0]},
			{"object":"embedding","index":0,"embedding":[3,0,4]}
		]}`))
	})

	e, err := NewOpenAIEmbedder(client, "text-embedding-3-small", 3)
	require.NoError(t, err)
	out, err := e.EmbedBatch(context.Background(), []string{"first", "second"})
	require.NoError(t, err)

	assert.Equal(t, 3, got.Dimensions)
	assert.Equal(t, "text-embedding-3-small", string(got.Model))
	require.Len(t, out, 2)
	assert.InDeltaSlice(t, []float32{0.6, 0, 0.8}, out[0], 1e-6)
	assert.InDeltaSlice(t, []float32{0, 1, 0}, out[1], 1e-6)
}

func TestOpenAIEmbedder_Errors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	})
	e, err := NewOpenAIEmbedder(client, "m", 3)
	require.NoError(t, err)
	_, err = e.Embed(context.Background(), "x")
	assert.Error(t, err)

	_, err = NewOpenAIEmbedder(nil, "m", 3)
	assert.Error(t, err)
}

func TestOpenAIEmbedder_DimensionMismatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"object":"embedding","index":0,"embedding":[1,0]}]}`))
	})
	e, err := NewOpenAIEmbedder(client, "m", 3)
	require.NoError(t, err)
	_, err = e.Embed(context.Background(), "x")
	assert.Error(t, err)
}
