package indexer

import (
	"strings"
	"testing"

	"github.com/hyperjump/kioku/pkg/utils"
)

func TestSplitText_Empty(t *testing.T) {
	for _, in := range []string{"", "   \n\t  "} {
		if chunks := SplitText(in, 100, 10); chunks != nil {
			t.Errorf("SplitText(%q) = %v, want nil", in, chunks)
		}
	}
}

func TestSplitText_ShortInputIsOneChunk(t *testing.T) {
	in := "  First sentence. Second one!\n\nThird?  "
	chunks := SplitText(in, 500, 50)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1: %q", len(chunks), chunks)
	}
	if chunks[0] != strings.TrimSpace(in) {
		t.Errorf("chunk = %q, want trimmed input", chunks[0])
	}
}

func TestSplitText_OneChunkPerBoundary(t *testing.T) {
	got := SplitText("A. B. C.", 4, 1)
	want := []string{"A.", ". B.", ". C."}
	if len(got) != len(want) {
		t.Fatalf("got %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chunk %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitText_NoOverlap(t *testing.T) {
	got := SplitText("One two. Three four. Five six.", 10, 0)
	want := []string{"One two.", "Three four.", "Five six."}
	if len(got) != len(want) {
		t.Fatalf("got %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chunk %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitText_OverlapPrefix(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 20) +
		"Überraschung für alle Beteiligten! Ist das so? Ja."
	for _, tc := range []struct{ maxChars, overlap int }{
		{60, 10},
		{100, 25},
		{45, 0},
		{80, 200},
	} {
		chunks := SplitText(text, tc.maxChars, tc.overlap)
		if len(chunks) < 2 {
			t.Fatalf("max=%d: expected several chunks, got %d", tc.maxChars, len(chunks))
		}
		for i := 1; i < len(chunks); i++ {
			prefix := utils.LastRunes(chunks[i-1], tc.overlap)
			if !strings.HasPrefix(chunks[i], prefix) {
				t.Errorf("max=%d overlap=%d: chunk %d %q does not start with %q",
					tc.maxChars, tc.overlap, i, chunks[i], prefix)
			}
		}
	}
}

func TestSplitText_LongSentenceEmittedWhole(t *testing.T) {
	long := strings.Repeat("word ", 40) + "end."
	chunks := SplitText("Short. "+long+" Tail.", 20, 0)
	found := false
	for _, c := range chunks {
		if c == long {
			found = true
		}
	}
	if !found {
		t.Errorf("long sentence not emitted whole: %q", chunks)
	}
}

func TestSplitText_RespectsLimit(t *testing.T) {
	text := strings.Repeat("Ab cd. ", 50)
	for _, c := range SplitText(text, 30, 5) {
		if n := utils.RuneLen(c); n > 30 {
			t.Errorf("chunk %q has %d characters, limit 30", c, n)
		}
	}
}

func TestSplitText_RuneLengths(t *testing.T) {
	// each sentence is 4 characters but 7 bytes
	chunks := SplitText("äöü. äöü. äöü.", 9, 0)
	if len(chunks) != 2 {
		t.Fatalf("got %q, want 2 chunks measured in characters", chunks)
	}
	if chunks[0] != "äöü. äöü." {
		t.Errorf("chunk 0 = %q", chunks[0])
	}
}

func TestSplitText_Unlimited(t *testing.T) {
	in := "A. B. C."
	if got := SplitText(in, 0, 3); len(got) != 1 || got[0] != in {
		t.Errorf("SplitText unlimited = %q", got)
	}
}

func TestChunker_Split(t *testing.T) {
	c := NewChunker(4, 1)
	if got := c.Split("A. B. C."); len(got) != 3 {
		t.Errorf("Split = %q, want 3 chunks", got)
	}
}

func TestPreprocess_TrimsAndCollapses(t *testing.T) {
	if Preprocess("  a  b  ") != "a b" {
		t.Error("expected trimmed and collapsed spaces")
	}
}
