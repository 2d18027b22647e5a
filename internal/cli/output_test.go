package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/kioku/internal/knowledge"
	"github.com/hyperjump/kioku/internal/models"
	"github.com/hyperjump/kioku/internal/qa"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"compact", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteAnswer(t *testing.T) {
	answer := &qa.Answer{
		Text:     "The Eiffel Tower is located in Paris.",
		Strategy: "extractive",
		Context:  []knowledge.Match{{Position: 4, Distance: 0.5, Text: "The Eiffel Tower is located in Paris."}},
	}

	var buf bytes.Buffer
	if err := WriteAnswer(&buf, answer, FormatText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"The Eiffel Tower is located in Paris.", "extractive, 1 chunk(s)", "[4] d=0.500"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := WriteAnswer(&buf, answer, FormatJSON); err != nil {
		t.Fatal(err)
	}
	var decoded qa.Answer
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if decoded.Text != answer.Text || len(decoded.Context) != 1 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestWriteAnswer_NoContext(t *testing.T) {
	var buf bytes.Buffer
	_ = WriteAnswer(&buf, &qa.Answer{Text: qa.NoContext, Strategy: "extractive"}, FormatText)
	if strings.Contains(buf.String(), "Context") {
		t.Errorf("no context section expected:\n%s", buf.String())
	}
}

func TestWriteMatches(t *testing.T) {
	res := &models.SearchResponse{
		Query: "capital",
		Matches: []knowledge.Match{
			{Position: 0, Distance: 0.25, Text: "Berlin is the capital of Germany."},
			{Position: 2, Distance: 1.1, Text: "Paris is the capital of France."},
		},
	}
	var buf bytes.Buffer
	if err := WriteMatches(&buf, res, FormatText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, `Found 2 chunk(s) for "capital"`) {
		t.Errorf("missing header:\n%s", out)
	}
	if strings.Index(out, "Berlin") > strings.Index(out, "Paris") {
		t.Errorf("matches out of order:\n%s", out)
	}
}

func TestWriteSummaryAndStatus(t *testing.T) {
	var buf bytes.Buffer
	_ = WriteSummary(&buf, &models.SummarizeResponse{Summary: "Short.", KeyPoints: []string{"One point here."}}, FormatText)
	if !strings.Contains(buf.String(), "• One point here.") {
		t.Errorf("summary output:\n%s", buf.String())
	}

	buf.Reset()
	_ = WriteStatus(&buf, &models.Status{Sources: 3, Chunks: 12, IndexType: "flat", DiskUsageBytes: 2048}, FormatText)
	out := buf.String()
	for _, want := range []string{"Sources:            3", "Chunks:             12", "2.0 KiB"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteSource(t *testing.T) {
	var buf bytes.Buffer
	_ = WriteSource(&buf, &models.Source{ID: "text:1", ChunkStart: 3, ChunkCount: 2}, FormatText)
	if got := buf.String(); got != "Ingested text:1 (2 chunk(s), positions 3-4)\n" {
		t.Errorf("got %q", got)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 << 20, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.n); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestTruncateWords(t *testing.T) {
	if got := TruncateWords("one  two three", 5); got != "one two three" {
		t.Errorf("got %q", got)
	}
	if got := TruncateWords("one two three", 2); got != "one two..." {
		t.Errorf("got %q", got)
	}
}

func TestWriteSources(t *testing.T) {
	list := &models.SourceList{
		Query: "telescpe",
		Total: 1,
		Fuzzy: true,
		Sources: []*models.SourceHit{{
			Source:       &models.Source{ID: "text:a", Title: "Telescope manual", Origin: "text", ChunkCount: 2},
			Score:        0.5,
			KeywordScore: 1,
			Snippet:      "Align the mirrors before observing.",
		}},
	}
	var buf bytes.Buffer
	if err := WriteSources(&buf, list, FormatText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		`Found 1 source(s) for "telescpe" (fuzzy)`,
		"text:a  Telescope manual  [text, 2 chunk(s)]",
		"score 0.500 (keyword 1.000, semantic 0.000)",
		"    Align the mirrors before observing.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	_ = WriteSources(&buf, &models.SourceList{Total: 0}, FormatText)
	if !strings.Contains(buf.String(), "0 source(s)") || strings.Contains(buf.String(), "score") {
		t.Errorf("unexpected listing output: %s", buf.String())
	}

	buf.Reset()
	if err := WriteSources(&buf, list, FormatJSON); err != nil {
		t.Fatal(err)
	}
	var decoded models.SourceList
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded.Sources) != 1 || decoded.Sources[0].ID != "text:a" || !decoded.Fuzzy {
		t.Errorf("unexpected JSON round trip: %+v", decoded)
	}
}
