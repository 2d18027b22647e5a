// Package summarize produces summaries and heuristic key points of a text.
package summarize

import (
	"sort"
	"strings"

	"github.com/hyperjump/kioku/pkg/utils"
)

// DefaultKeyPoints is the number of key points returned when n is not positive.
const DefaultKeyPoints = 5

// KeyPoints returns up to n sentences ranked by position and length. Sentences with five
// words or fewer are ignored. A sentence in the first 20% of the text scores x1.5, and one
// with 8 to 25 words scores x1.2 (x0.8 otherwise). Equal scores keep text order.
func KeyPoints(text string, n int) []string {
	if n <= 0 {
		n = DefaultKeyPoints
	}
	sentences := utils.SplitSentences(text)
	type scored struct {
		text  string
		score float64
	}
	var candidates []scored
	for i, s := range sentences {
		words := len(strings.Fields(s))
		if words <= 5 {
			continue
		}
		position := 1.0
		if float64(i) < 0.2*float64(len(sentences)) {
			position = 1.5
		}
		length := 0.8
		if words >= 8 && words <= 25 {
			length = 1.2
		}
		candidates = append(candidates, scored{text: s, score: position * length})
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	if len(candidates) > n {
		candidates = candidates[:n]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.text
	}
	return out
}
