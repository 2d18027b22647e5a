package keyword

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
	"github.com/hyperjump/kioku/internal/models"
)

// titleBoost weights title matches over content matches.
const titleBoost = 2.0

// BleveIndex implements SourceIndex using Bleve.
type BleveIndex struct {
	index bleve.Index
}

// indexedSource is the document stored in Bleve for each source.
type indexedSource struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Origin  string `json:"origin"`
	Path    string `json:"path"`
}

func newMapping() *mapping.IndexMappingImpl {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so queries match the exact word.
	text := bleve.NewTextFieldMapping()
	text.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("title", text)
	docMapping.AddFieldMappingsAt("content", text)
	docMapping.AddFieldMappingsAt("path", text)
	docMapping.AddFieldMappingsAt("origin", bleve.NewKeywordFieldMapping())

	im.AddDocumentMapping("source", docMapping)
	im.DefaultType = "source"
	im.DefaultMapping = docMapping
	return im
}

// NewBleveIndex creates or opens a Bleve index at path. An empty path creates an in-memory index.
func NewBleveIndex(path string) (*BleveIndex, error) {
	if path == "" {
		index, err := bleve.NewMemOnly(newMapping())
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory Bleve index: %w", err)
		}
		return &BleveIndex{index: index}, nil
	}

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}

	index, err := bleve.New(path, newMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// Index adds or replaces src in the index.
func (b *BleveIndex) Index(ctx context.Context, src *models.Source) error {
	return b.index.Index(src.ID, indexedSource{
		Title:   src.Title,
		Content: src.Content,
		Origin:  src.Origin,
		Path:    src.Path,
	})
}

// Search matches query against titles, paths and content. When the exact query finds nothing,
// it retries with fuzzy term matching.
func (b *BleveIndex) Search(ctx context.Context, query string, limit, offset int) (*Results, error) {
	res, err := b.run(ctx, b.matchQuery(query), limit, offset)
	if err != nil {
		return nil, err
	}
	if res.Total > 0 {
		return res, nil
	}
	fuzzy := b.fuzzyQuery(query)
	if fuzzy == nil {
		return res, nil
	}
	res, err = b.run(ctx, fuzzy, limit, offset)
	if err != nil {
		return nil, err
	}
	res.Fuzzy = res.Total > 0
	return res, nil
}

func (b *BleveIndex) run(ctx context.Context, q blevequery.Query, limit, offset int) (*Results, error) {
	req := bleve.NewSearchRequestOptions(q, limit, offset, false)
	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := &Results{Total: results.Total, Hits: make([]Hit, len(results.Hits))}
	for i, hit := range results.Hits {
		out.Hits[i] = Hit{ID: hit.ID, Score: hit.Score}
	}
	return out, nil
}

// matchQuery scores title matches above content matches; any field may match.
func (b *BleveIndex) matchQuery(query string) blevequery.Query {
	title := bleve.NewMatchQuery(query)
	title.SetField("title")
	title.SetBoost(titleBoost)
	content := bleve.NewMatchQuery(query)
	content.SetField("content")
	path := bleve.NewMatchQuery(query)
	path.SetField("path")
	return bleve.NewDisjunctionQuery(title, content, path)
}

// fuzzyQuery builds a disjunction of per-term fuzzy queries, or nil for a query without terms.
// Terms shorter than four letters are matched exactly to keep noise down.
func (b *BleveIndex) fuzzyQuery(query string) blevequery.Query {
	terms := tokenizeQuery(query)
	if len(terms) == 0 {
		return nil
	}
	queries := make([]blevequery.Query, 0, len(terms)*2)
	for _, term := range terms {
		for _, field := range []string{"title", "content"} {
			var q blevequery.FieldableQuery
			if len([]rune(term)) < 4 {
				q = bleve.NewTermQuery(term)
			} else {
				fq := bleve.NewFuzzyQuery(term)
				fq.SetFuzziness(fuzzinessFor(term))
				q = fq
			}
			q.SetField(field)
			queries = append(queries, q)
		}
	}
	return bleve.NewDisjunctionQuery(queries...)
}

func fuzzinessFor(term string) int {
	if len([]rune(term)) >= 8 {
		return 2
	}
	return 1
}

// tokenizeQuery splits query into lowercase terms, filtering out empty strings.
func tokenizeQuery(query string) []string {
	return strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == ',' || r == '.' || r == '?' || r == '!' || r == ';' || r == ':'
	})
}

// Delete removes a source from the index.
func (b *BleveIndex) Delete(ctx context.Context, id string) error {
	return b.index.Delete(id)
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}

// DocCount returns the total number of sources in the index.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}
