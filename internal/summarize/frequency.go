package summarize

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/hyperjump/kioku/pkg/utils"
)

// FrequencyModel is an offline extractive summarizer. Sentences are scored by the normalised
// frequency of their non-stopword tokens, divided by the square root of their length, and the
// best ones are kept in text order until the word budget is used.
type FrequencyModel struct {
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewFrequencyModel creates a frequency-based sentence ranker.
func NewFrequencyModel() *FrequencyModel {
	return &FrequencyModel{
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		stopwords:    defaultStopwords(),
	}
}

func (m *FrequencyModel) Summarize(ctx context.Context, text string, minWords, maxWords int) (string, error) {
	sentences := utils.SplitSentences(text)
	if len(sentences) == 0 {
		return "", nil
	}

	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, tok := range m.tokens(sent) {
			if _, ok := m.stopwords[tok]; !ok {
				freq[tok]++
			}
		}
	}
	maxF := 0.0
	for _, v := range freq {
		maxF = math.Max(maxF, v)
	}
	if maxF > 0 {
		for k, v := range freq {
			freq[k] = v / maxF
		}
	}

	type pair struct {
		idx   int
		score float64
		words int
	}
	scores := make([]pair, len(sentences))
	for i, sent := range sentences {
		toks := m.tokens(sent)
		score := 0.0
		for _, tok := range toks {
			score += freq[tok]
		}
		if len(toks) > 0 {
			score /= math.Sqrt(float64(len(toks)))
		}
		scores[i] = pair{idx: i, score: score, words: len(strings.Fields(sent))}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	var selected []int
	total := 0
	for _, p := range scores {
		if len(selected) > 0 && total+p.words > maxWords {
			if total >= minWords {
				break
			}
			continue
		}
		selected = append(selected, p.idx)
		total += p.words
	}
	sort.Ints(selected)

	out := make([]string, len(selected))
	for i, idx := range selected {
		out[i] = sentences[idx]
	}
	return strings.Join(out, " "), nil
}

func (m *FrequencyModel) tokens(text string) []string {
	return m.tokenPattern.FindAllString(strings.ToLower(text), -1)
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
