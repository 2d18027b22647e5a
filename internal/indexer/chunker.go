// Package indexer turns raw text and files into knowledge-store chunks and source records.
package indexer

import "github.com/hyperjump/kioku/pkg/utils"

// Chunker splits text into overlapping sentence-aligned chunks.
type Chunker struct {
	MaxChars int
	Overlap  int
}

// NewChunker creates a chunker with the given size and overlap (in characters).
func NewChunker(maxChars, overlap int) *Chunker {
	return &Chunker{MaxChars: maxChars, Overlap: overlap}
}

// Split splits text with the chunker's configured limits.
func (c *Chunker) Split(text string) []string {
	return SplitText(text, c.MaxChars, c.Overlap)
}

// SplitText greedily packs sentences into chunks of at most maxChars characters.
// When a chunk is closed, the next one starts with its last overlap characters followed by
// the original separator and the next sentence. A sentence longer than maxChars is emitted
// whole. maxChars <= 0 disables the limit.
func SplitText(text string, maxChars, overlap int) []string {
	sentences := utils.Sentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	buf := sentences[0].Text
	for _, s := range sentences[1:] {
		if maxChars > 0 && utils.RuneLen(buf)+utils.RuneLen(s.Sep)+utils.RuneLen(s.Text) > maxChars {
			chunks = append(chunks, buf)
			if seed := utils.LastRunes(buf, overlap); seed != "" {
				buf = seed + s.Sep + s.Text
			} else {
				buf = s.Text
			}
			continue
		}
		buf += s.Sep + s.Text
	}
	return append(chunks, buf)
}
