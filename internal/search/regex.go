package search

import (
	"context"
	"strings"

	"github.com/knowhub/wikidex/internal/version"
)

// RegexSearcher matches chunks against the query pattern. Exact pattern
// evidence is strong, so every hit carries the same fixed score and the
// merger ranks pattern hits above everything else in its band.
type RegexSearcher struct{}

// NewRegexSearcher creates the pattern stream.
func NewRegexSearcher() *RegexSearcher {
	return &RegexSearcher{}
}

// Search returns every chunk the pattern matches. Plans without pattern
// syntax produce no results; literal-fallback plans match as substrings.
func (s *RegexSearcher) Search(ctx context.Context, h *version.Handle, plan *QueryPlan) ([]Result, error) {
	if !plan.HasPattern {
		return nil, nil
	}

	var results []Result
	for _, c := range h.Chunks() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		at, ok := s.match(c.Content, plan)
		if !ok {
			continue
		}
		results = append(results, Result{
			ChunkID: c.ID,
			DocPath: c.DocPath,
			Score:   RegexScore,
			Stream:  StreamRegex,
			Snippet: snippet(c.Content, at),
		})
	}
	return results, nil
}

// match locates the first occurrence of the pattern in content, returning
// its byte offset.
func (s *RegexSearcher) match(content string, plan *QueryPlan) (int, bool) {
	if plan.Pattern != nil {
		loc := plan.Pattern.FindStringIndex(content)
		if loc == nil {
			return 0, false
		}
		return loc[0], true
	}
	// Malformed pattern: literal substring search.
	at := strings.Index(strings.ToLower(content), plan.Literal)
	if at < 0 {
		return 0, false
	}
	return at, true
}
