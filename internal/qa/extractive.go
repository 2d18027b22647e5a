package qa

import (
	"context"
	"sort"
	"strings"

	"github.com/hyperjump/kioku/internal/embedding"
	"github.com/hyperjump/kioku/pkg/utils"
)

// Extraction is an answer span with the model's confidence in [0, 1].
type Extraction struct {
	Text  string
	Score float64
}

// ExtractiveModel picks an answer out of the context.
type ExtractiveModel interface {
	Extract(ctx context.Context, question, contextText string) (Extraction, error)
}

// Extractive answers with an ExtractiveModel and refuses below MinScore.
type Extractive struct {
	Model    ExtractiveModel
	MinScore float64
}

// NewExtractive returns the extractive strategy. minScore <= 0 uses 0.2.
func NewExtractive(model ExtractiveModel, minScore float64) *Extractive {
	if minScore <= 0 {
		minScore = 0.2
	}
	return &Extractive{Model: model, MinScore: minScore}
}

func (e *Extractive) Name() string { return "extractive" }

func (e *Extractive) Answer(ctx context.Context, question, contextText string) (string, error) {
	ext, err := e.Model.Extract(ctx, question, contextText)
	if err != nil {
		return "", err
	}
	if ext.Score < e.MinScore || strings.TrimSpace(ext.Text) == "" {
		return Unknown, nil
	}
	return strings.TrimSpace(ext.Text), nil
}

// LexicalReader is an offline extractive model. It ranks context sentences by how many
// question keywords (words longer than three letters) they contain and returns the best
// MaxSentences in context order. Score is the share of question keywords the answer covers.
type LexicalReader struct {
	MaxSentences int
}

// NewLexicalReader returns a reader answering with up to two sentences.
func NewLexicalReader() *LexicalReader {
	return &LexicalReader{MaxSentences: 2}
}

type rankedSentence struct {
	pos   int
	text  string
	hits  int
	words map[string]bool
}

func (r *LexicalReader) Extract(ctx context.Context, question, contextText string) (Extraction, error) {
	keywords := keywordSet(question)
	if len(keywords) == 0 {
		return Extraction{}, nil
	}

	var ranked []rankedSentence
	for i, s := range utils.SplitSentences(contextText) {
		words := keywordSet(s)
		hits := 0
		for k := range keywords {
			if words[k] {
				hits++
			}
		}
		if hits > 0 {
			ranked = append(ranked, rankedSentence{pos: i, text: s, hits: hits, words: words})
		}
	}
	if len(ranked) == 0 {
		return Extraction{}, nil
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].hits > ranked[j].hits })
	limit := r.MaxSentences
	if limit <= 0 {
		limit = 2
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].pos < ranked[j].pos })

	covered := make(map[string]bool)
	texts := make([]string, len(ranked))
	for i, s := range ranked {
		texts[i] = s.text
		for k := range keywords {
			if s.words[k] {
				covered[k] = true
			}
		}
	}
	return Extraction{
		Text:  strings.Join(texts, " "),
		Score: float64(len(covered)) / float64(len(keywords)),
	}, nil
}

func keywordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range embedding.Words(text) {
		if len([]rune(w)) > 3 {
			set[w] = true
		}
	}
	return set
}
