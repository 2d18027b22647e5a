// Package extract turns uploaded or watched files into plain text for ingestion.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type decodeFunc func(content []byte) (string, error)

// Extractor maps file extensions to text decoders. Unknown extensions are
// decoded as plain text.
type Extractor struct {
	decoders map[string]decodeFunc
}

// NewExtractor returns an Extractor that understands text, Markdown,
// reStructuredText, PDF, DOCX and XLSX files.
func NewExtractor() *Extractor {
	return &Extractor{decoders: map[string]decodeFunc{
		".txt":  decodePlain,
		".md":   decodePlain,
		".rst":  decodePlain,
		".pdf":  decodePDF,
		".docx": decodeDOCX,
		".xlsx": decodeXLSX,
	}}
}

// Supports reports whether ext has a dedicated decoder.
func (e *Extractor) Supports(ext string) bool {
	_, ok := e.decoders[normalizeExt(ext)]
	return ok
}

// Formats lists the extensions with a dedicated decoder, sorted.
func (e *Extractor) Formats() []string {
	out := make([]string, 0, len(e.decoders))
	for ext := range e.decoders {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Extract reads the file at path and returns its text.
func (e *Extractor) Extract(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return e.ExtractBytes(content, filepath.Ext(path))
}

// ExtractBytes decodes content according to ext (".pdf", "pdf" and ".PDF" are equivalent).
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	decode, ok := e.decoders[normalizeExt(ext)]
	if !ok {
		decode = decodePlain
	}
	text, err := decode(content)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
