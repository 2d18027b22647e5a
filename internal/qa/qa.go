// Package qa answers questions from chunks retrieved out of the knowledge store.
package qa

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hyperjump/kioku/internal/knowledge"
	"github.com/hyperjump/kioku/pkg/utils"
	"go.uber.org/zap"
)

const (
	// NoContext is returned when retrieval finds nothing to answer from.
	NoContext = "I don't have enough information to answer that."
	// Unknown is returned when the model has no confident answer.
	Unknown = "I don't know."
)

// Retriever finds the chunks closest to a query.
type Retriever interface {
	Matches(ctx context.Context, query string, topK int) ([]knowledge.Match, error)
}

// Strategy produces an answer from a question and the joined context block.
type Strategy interface {
	Name() string
	Answer(ctx context.Context, question, contextText string) (string, error)
}

// Answer is the result of one question.
type Answer struct {
	Text     string            `json:"answer"`
	Strategy string            `json:"strategy"`
	Context  []knowledge.Match `json:"context"`
}

// Answerer retrieves context and delegates to one strategy. There is no fallback
// between strategies.
type Answerer struct {
	retriever   Retriever
	strategy    Strategy
	topK        int
	maxDistance float32
	logger      *zap.Logger
}

// Option configures an Answerer.
type Option func(*Answerer)

// WithTopK sets how many chunks are retrieved (default 3).
func WithTopK(k int) Option {
	return func(a *Answerer) {
		if k > 0 {
			a.topK = k
		}
	}
}

// WithMaxDistance drops retrieved chunks whose squared L2 distance exceeds d. 0 keeps all.
func WithMaxDistance(d float64) Option {
	return func(a *Answerer) {
		a.maxDistance = float32(d)
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Answerer) {
		a.logger = l
	}
}

// NewAnswerer returns an Answerer using retriever and strategy.
func NewAnswerer(retriever Retriever, strategy Strategy, opts ...Option) (*Answerer, error) {
	if retriever == nil || strategy == nil {
		return nil, errors.New("retriever and strategy are required")
	}
	a := &Answerer{retriever: retriever, strategy: strategy, topK: 3}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = utils.OrNop(a.logger)
	return a, nil
}

// Answer answers question from the store. A blank question returns knowledge.ErrEmptyInput;
// no usable context returns NoContext without calling the strategy.
func (a *Answerer) Answer(ctx context.Context, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, knowledge.ErrEmptyInput
	}
	matches, err := a.retriever.Matches(ctx, question, a.topK)
	if err != nil {
		return nil, err
	}
	matches = a.filter(matches)

	result := &Answer{Strategy: a.strategy.Name(), Context: matches}
	if len(matches) == 0 {
		result.Text = NoContext
		return result, nil
	}

	texts := make([]string, len(matches))
	for i, m := range matches {
		texts[i] = m.Text
	}
	text, err := a.strategy.Answer(ctx, question, strings.Join(texts, " "))
	if err != nil {
		return nil, fmt.Errorf("%s answer: %w", a.strategy.Name(), err)
	}
	result.Text = text
	a.logger.Debug("answered question",
		zap.String("strategy", result.Strategy),
		zap.Int("context_chunks", len(matches)),
	)
	return result, nil
}

func (a *Answerer) filter(matches []knowledge.Match) []knowledge.Match {
	if a.maxDistance <= 0 {
		return matches
	}
	kept := matches[:0:0]
	for _, m := range matches {
		if m.Distance <= a.maxDistance {
			kept = append(kept, m)
		}
	}
	return kept
}
