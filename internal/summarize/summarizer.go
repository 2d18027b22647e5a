package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hyperjump/kioku/pkg/utils"
	"go.uber.org/zap"
)

// TooShort is returned for texts under MinInputChars characters.
const TooShort = "Text too short to summarize."

// MinInputChars is the shortest trimmed text the summarizer sends to a model.
const MinInputChars = 50

// Model writes a summary between minWords and maxWords long.
type Model interface {
	Summarize(ctx context.Context, text string, minWords, maxWords int) (string, error)
}

// Summarizer applies length bounds and the too-short rule around a Model.
type Summarizer struct {
	model     Model
	minLength int
	maxLength int
	logger    *zap.Logger
}

// Option configures a Summarizer.
type Option func(*Summarizer)

// WithLengths sets the summary word bounds (defaults 40 and 120).
func WithLengths(minWords, maxWords int) Option {
	return func(s *Summarizer) {
		if minWords > 0 {
			s.minLength = minWords
		}
		if maxWords > 0 {
			s.maxLength = maxWords
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Summarizer) {
		s.logger = l
	}
}

// NewSummarizer returns a Summarizer for model.
func NewSummarizer(model Model, opts ...Option) (*Summarizer, error) {
	if model == nil {
		return nil, errors.New("summary model is required")
	}
	s := &Summarizer{model: model, minLength: 40, maxLength: 120}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = utils.OrNop(s.logger)
	return s, nil
}

// Summarize returns a summary of text, or TooShort without calling the model when the
// trimmed text has fewer than MinInputChars characters.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if utils.RuneLen(text) < MinInputChars {
		return TooShort, nil
	}
	minWords, maxWords := s.bounds(len(strings.Fields(text)))
	summary, err := s.model.Summarize(ctx, text, minWords, maxWords)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	s.logger.Debug("summarized text",
		zap.Int("min_words", minWords),
		zap.Int("max_words", maxWords),
		zap.Int("summary_chars", utils.RuneLen(summary)),
	)
	return strings.TrimSpace(summary), nil
}

// bounds caps the configured lengths at half the input's word count.
func (s *Summarizer) bounds(inputWords int) (minWords, maxWords int) {
	maxWords = s.maxLength
	if half := inputWords / 2; half < maxWords {
		maxWords = half
	}
	if maxWords < 1 {
		maxWords = 1
	}
	minWords = s.minLength
	if minWords > maxWords {
		minWords = maxWords
	}
	return minWords, maxWords
}
