// Package utils provides shared utilities for text, math, and logging.
package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Truncate returns s truncated to maxLen characters, with "..." appended if truncated.
// If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + "..."
}

// Sentence is one sentence of a larger text. Sep holds the whitespace that separated it
// from the previous sentence in the source; it is empty for the first sentence.
type Sentence struct {
	Text string
	Sep  string
}

// Sentences splits trimmed text into sentences. A sentence ends at '.', '!' or '?'
// followed by whitespace; trailing text without terminal punctuation is the last sentence.
func Sentences(text string) []Sentence {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	var out []Sentence
	start, sep := 0, ""
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		end := i + size
		if isTerminal(r) && end < len(text) {
			next, _ := utf8.DecodeRuneInString(text[end:])
			if unicode.IsSpace(next) {
				out = append(out, Sentence{Text: text[start:end], Sep: sep})
				j := skipSpace(text, end)
				sep, start, i = text[end:j], j, j
				continue
			}
		}
		i = end
	}
	if start < len(text) {
		out = append(out, Sentence{Text: text[start:], Sep: sep})
	}
	return out
}

// SplitSentences returns the sentence texts of text without separators.
func SplitSentences(text string) []string {
	sentences := Sentences(text)
	if len(sentences) == 0 {
		return nil
	}
	out := make([]string, len(sentences))
	for i, s := range sentences {
		out[i] = s.Text
	}
	return out
}

// LastRunes returns the last n characters of s, or s itself when it is shorter.
func LastRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := utf8.RuneCountInString(s)
	if count <= n {
		return s
	}
	skip := count - n
	for i := range s {
		if skip == 0 {
			return s[i:]
		}
		skip--
	}
	return ""
}

// RuneLen returns the number of characters in s.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func skipSpace(s string, i int) int {
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += size
	}
	return i
}
