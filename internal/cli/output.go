// Package cli renders command results for the kioku CLI.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/kioku/internal/models"
	"github.com/hyperjump/kioku/internal/qa"
	"github.com/hyperjump/kioku/pkg/utils"
)

// Format is a CLI output format.
type Format string

const (
	// FormatText is human-readable text (default).
	FormatText Format = "text"
	// FormatJSON is indented JSON for other programs.
	FormatJSON Format = "json"
)

const rule = "─────────────────────────────────────────────────────────"

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteAnswer writes an answer and the chunks it was drawn from.
func WriteAnswer(w io.Writer, answer *qa.Answer, format Format) error {
	if format == FormatJSON {
		return writeJSON(w, answer)
	}
	fmt.Fprintf(w, "\n%s\n", answer.Text)
	if len(answer.Context) == 0 {
		return nil
	}
	fmt.Fprintf(w, "\nContext (%s, %d chunk(s)):\n", answer.Strategy, len(answer.Context))
	for _, m := range answer.Context {
		fmt.Fprintf(w, "  [%d] d=%.3f  %s\n", m.Position, m.Distance, TruncateWords(m.Text, 20))
	}
	return nil
}

// WriteMatches writes nearest-chunk search results.
func WriteMatches(w io.Writer, res *models.SearchResponse, format Format) error {
	if format == FormatJSON {
		return writeJSON(w, res)
	}
	fmt.Fprintf(w, "\nFound %d chunk(s) for %q\n\n", len(res.Matches), res.Query)
	for i, m := range res.Matches {
		fmt.Fprintln(w, rule)
		fmt.Fprintf(w, "#%d  position %d  distance %.4f\n\n", i+1, m.Position, m.Distance)
		fmt.Fprintf(w, "%s\n\n", utils.Truncate(m.Text, 300))
	}
	return nil
}

// WriteSummary writes a summary followed by its key points.
func WriteSummary(w io.Writer, res *models.SummarizeResponse, format Format) error {
	if format == FormatJSON {
		return writeJSON(w, res)
	}
	fmt.Fprintf(w, "\nSummary:\n%s\n", res.Summary)
	if len(res.KeyPoints) > 0 {
		fmt.Fprintln(w, "\nKey points:")
		for _, p := range res.KeyPoints {
			fmt.Fprintf(w, "  • %s\n", p)
		}
	}
	return nil
}

// WriteSource writes one ingested source.
func WriteSource(w io.Writer, src *models.Source, format Format) error {
	if format == FormatJSON {
		return writeJSON(w, models.IngestResponse{ID: src.ID, Chunks: src.ChunkCount})
	}
	fmt.Fprintf(w, "Ingested %s (%d chunk(s), positions %d-%d)\n",
		src.ID, src.ChunkCount, src.ChunkStart, src.ChunkStart+src.ChunkCount-1)
	return nil
}

// WriteSources writes a page of sources. Scores are shown when the page answers a query.
func WriteSources(w io.Writer, list *models.SourceList, format Format) error {
	if format == FormatJSON {
		return writeJSON(w, list)
	}
	if list.Query != "" {
		fmt.Fprintf(w, "\nFound %d source(s) for %q", list.Total, list.Query)
		if list.Fuzzy {
			fmt.Fprint(w, " (fuzzy)")
		}
		fmt.Fprint(w, "\n\n")
	} else {
		fmt.Fprintf(w, "\n%d source(s)\n\n", list.Total)
	}
	for _, hit := range list.Sources {
		fmt.Fprintf(w, "%s  %s  [%s, %d chunk(s)]\n", hit.ID, hit.Title, hit.Origin, hit.ChunkCount)
		if list.Query != "" {
			fmt.Fprintf(w, "    score %.3f (keyword %.3f, semantic %.3f)\n", hit.Score, hit.KeywordScore, hit.SemanticScore)
		}
		if hit.Snippet != "" {
			fmt.Fprintf(w, "    %s\n", hit.Snippet)
		}
	}
	return nil
}

// WriteStatus writes store and index statistics.
func WriteStatus(w io.Writer, st *models.Status, format Format) error {
	if format == FormatJSON {
		return writeJSON(w, st)
	}
	fmt.Fprintln(w, "kioku status")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Sources:            %d\n", st.Sources)
	fmt.Fprintf(w, "Chunks:             %d\n", st.Chunks)
	fmt.Fprintf(w, "Vector index:       %s\n", st.IndexType)
	fmt.Fprintf(w, "Keyword documents:  %d\n", st.KeywordDocs)
	fmt.Fprintf(w, "QA mode:            %s\n", st.QAMode)
	fmt.Fprintf(w, "Embedding provider: %s\n", st.EmbeddingModel)
	fmt.Fprintf(w, "Disk usage:         %s\n", FormatBytes(st.DiskUsageBytes))
	return nil
}

// FormatBytes renders n with a binary unit suffix.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// TruncateWords returns up to maxWords words of s, with "..." when cut.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
