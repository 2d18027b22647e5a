package search

import (
	"strings"
	"unicode/utf8"
)

// Snippet collapses whitespace in text and cuts it to maxLen characters, backing up to the
// last word boundary in the second half of the cut. maxLen <= 0 returns the collapsed text.
func Snippet(text string, maxLen int) string {
	text = strings.Join(strings.Fields(text), " ")
	if maxLen <= 0 || utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	runes := []rune(text)[:maxLen]
	for i := len(runes) - 1; i > maxLen/2; i-- {
		if runes[i] == ' ' {
			runes = runes[:i]
			break
		}
	}
	return strings.TrimRight(string(runes), " ") + "..."
}
