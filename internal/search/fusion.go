// Package search finds sources by fusing keyword hits with semantic chunk matches.
package search

import (
	"sort"

	"github.com/hyperjump/kioku/internal/keyword"
	"github.com/hyperjump/kioku/internal/knowledge"
)

// FusedResult holds a source ID and its fused keyword/semantic scores.
type FusedResult struct {
	SourceID      string
	Score         float64
	KeywordScore  float64
	SemanticScore float64
}

// NormalizeKeywordScores scales keyword scores to [0,1] by the best hit.
func NormalizeKeywordScores(hits []keyword.Hit) map[string]float64 {
	normalized := make(map[string]float64, len(hits))
	if len(hits) == 0 {
		return normalized
	}
	maxScore := hits[0].Score
	for _, h := range hits {
		if h.Score > maxScore {
			maxScore = h.Score
		}
	}
	for _, h := range hits {
		if maxScore > 0 {
			normalized[h.ID] = h.Score / maxScore
		} else {
			normalized[h.ID] = 0
		}
	}
	return normalized
}

// Similarity turns a squared L2 distance between unit vectors into a score in [0,1]:
// identical vectors score 1, orthogonal or opposed ones 0.
func Similarity(distance float32) float64 {
	s := 1 - float64(distance)/2
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// NormalizeSemanticScores maps chunk positions to similarity scores. Matches farther than
// maxDistance are dropped; maxDistance <= 0 keeps everything.
func NormalizeSemanticScores(matches []knowledge.Match, maxDistance float32) map[int]float64 {
	normalized := make(map[int]float64, len(matches))
	for _, m := range matches {
		if maxDistance > 0 && m.Distance > maxDistance {
			continue
		}
		normalized[m.Position] = Similarity(m.Distance)
	}
	return normalized
}

// AggregateSemanticBySource keeps the best chunk score of each source. positionToSource
// maps chunk positions to source IDs; positions without a source are ignored.
func AggregateSemanticBySource(positionToSource map[int]string, semanticScores map[int]float64) map[string]float64 {
	bySource := make(map[string]float64)
	for pos, score := range semanticScores {
		id := positionToSource[pos]
		if id == "" {
			continue
		}
		if s, ok := bySource[id]; !ok || score > s {
			bySource[id] = score
		}
	}
	return bySource
}

// Fuse merges keyword and semantic score maps with weights, best first. Ties are broken by
// source ID so the order is stable.
func Fuse(keywordScores, semanticScores map[string]float64, keywordWeight, semanticWeight float64) []*FusedResult {
	scoreMap := make(map[string]*FusedResult)
	for id, score := range keywordScores {
		scoreMap[id] = &FusedResult{SourceID: id, KeywordScore: score}
	}
	for id, score := range semanticScores {
		if result, exists := scoreMap[id]; exists {
			result.SemanticScore = score
		} else {
			scoreMap[id] = &FusedResult{SourceID: id, SemanticScore: score}
		}
	}
	results := make([]*FusedResult, 0, len(scoreMap))
	for _, result := range scoreMap {
		result.Score = keywordWeight*result.KeywordScore + semanticWeight*result.SemanticScore
		results = append(results, result)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].SourceID < results[j].SourceID
	})
	return results
}
