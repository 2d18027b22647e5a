package indexer

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Preprocess prepares text for chunking: NFC normalisation, control and format characters
// (BOMs, zero-width spaces) dropped, whitespace runs collapsed to one space, ends trimmed.
func Preprocess(text string) string {
	text = norm.NFC.String(text)
	var b strings.Builder
	b.Grow(len(text))
	pendingSpace := false
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = b.Len() > 0
		case unicode.IsControl(r) || unicode.Is(unicode.Cf, r):
		default:
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}
