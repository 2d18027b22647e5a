package qa

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedModel struct {
	ext Extraction
	err error
}

func (f fixedModel) Extract(context.Context, string, string) (Extraction, error) {
	return f.ext, f.err
}

func TestExtractive_Threshold(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		ext  Extraction
		want string
	}{
		{"confident", Extraction{Text: " Paris ", Score: 0.9}, "Paris"},
		{"at threshold", Extraction{Text: "Paris", Score: 0.2}, "Paris"},
		{"below threshold", Extraction{Text: "Paris", Score: 0.19}, Unknown},
		{"empty span", Extraction{Text: "  ", Score: 0.9}, Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewExtractive(fixedModel{ext: tt.ext}, 0).Answer(ctx, "q", "c")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	boom := errors.New("boom")
	_, err := NewExtractive(fixedModel{err: boom}, 0.2).Answer(ctx, "q", "c")
	assert.ErrorIs(t, err, boom)
}

func TestLexicalReader_Extract(t *testing.T) {
	r := NewLexicalReader()
	contextText := "Go was designed at Google. The language has goroutines for concurrency. " +
		"Goroutines are cheap threads managed by the runtime. Bananas are yellow."

	ext, err := r.Extract(context.Background(), "How do goroutines provide concurrency?", contextText)
	require.NoError(t, err)
	assert.Equal(t, "The language has goroutines for concurrency. Goroutines are cheap threads managed by the runtime.", ext.Text)
	// keywords: goroutines, provide, concurrency; two are covered
	assert.InDelta(t, 2.0/3.0, ext.Score, 1e-9)
}

func TestLexicalReader_NoOverlap(t *testing.T) {
	ext, err := NewLexicalReader().Extract(context.Background(), "What about elephants?", "Bananas are yellow.")
	require.NoError(t, err)
	assert.Empty(t, ext.Text)
	assert.Zero(t, ext.Score)

	ext, err = NewLexicalReader().Extract(context.Background(), "Is it?", "It is.")
	require.NoError(t, err)
	assert.Zero(t, ext.Score, "questions without keywords have no confidence")
}
