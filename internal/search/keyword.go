package search

import (
	"context"

	"github.com/knowhub/wikidex/internal/version"
)

// KeywordSearcher scores chunks by lexical token overlap with the query.
// The score is the fraction of distinct query tokens present in the chunk,
// scaled into [0.0, 0.6] so pure keyword evidence never outranks a
// semantic or pattern hit.
type KeywordSearcher struct{}

// NewKeywordSearcher creates the lexical stream.
func NewKeywordSearcher() *KeywordSearcher {
	return &KeywordSearcher{}
}

// Search returns every chunk sharing at least one token with the query.
func (s *KeywordSearcher) Search(ctx context.Context, h *version.Handle, plan *QueryPlan) ([]Result, error) {
	if plan.TokenCount == 0 {
		return nil, nil
	}

	var results []Result
	for i, c := range h.Chunks() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		chunkTokens := h.ChunkTokens(i)
		overlap := 0
		for tok := range plan.Tokens {
			if _, ok := chunkTokens[tok]; ok {
				overlap++
			}
		}
		if overlap == 0 {
			continue
		}

		results = append(results, Result{
			ChunkID: c.ID,
			DocPath: c.DocPath,
			Score:   float64(overlap) / float64(plan.TokenCount) * KeywordScoreMax,
			Stream:  StreamKeyword,
			Snippet: snippet(c.Content, 0),
		})
	}
	return results, nil
}
