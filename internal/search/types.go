// Package search implements hybrid retrieval over a version handle: exact
// pattern matching, embedding similarity, and lexical token overlap, merged
// into one ranked list.
//
// Stream score bands keep the merge meaningful without cross-stream score
// normalization: pattern hits score a fixed 0.95, semantic hits land in
// [0.25, 1.0], keyword hits in [0.0, 0.6].
package search

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/knowhub/wikidex/internal/version"
)

// Stream identifies which searcher produced a result.
type Stream string

const (
	StreamRegex    Stream = "regex"
	StreamSemantic Stream = "semantic"
	StreamKeyword  Stream = "keyword"
)

// priority orders streams for deduplication and tie-breaking: exact pattern
// evidence outranks embedding similarity, which outranks token overlap.
func (s Stream) priority() int {
	switch s {
	case StreamRegex:
		return 3
	case StreamSemantic:
		return 2
	case StreamKeyword:
		return 1
	default:
		return 0
	}
}

// Score bands per stream.
const (
	RegexScore       = 0.95
	SemanticScoreMin = 0.25
	KeywordScoreMax  = 0.6
)

// Result is one ranked chunk hit.
type Result struct {
	ChunkID string  `json:"chunk_id"`
	DocPath string  `json:"doc_path"`
	Score   float64 `json:"score"`
	Stream  Stream  `json:"stream"`
	Snippet string  `json:"snippet"`
}

// Searcher is one retrieval stream over a version handle.
type Searcher interface {
	Search(ctx context.Context, h *version.Handle, plan *QueryPlan) ([]Result, error)
}

// snippetWidth bounds extracted snippets.
const snippetWidth = 160

// snippet extracts a window of content centered on the byte offset of the
// first match, clamped to the content and aligned to rune boundaries.
func snippet(content string, center int) string {
	if len(content) <= snippetWidth {
		return strings.TrimSpace(content)
	}

	start := center - snippetWidth/2
	if start < 0 {
		start = 0
	}
	end := start + snippetWidth
	if end > len(content) {
		end = len(content)
		start = end - snippetWidth
	}

	for start > 0 && !utf8.RuneStart(content[start]) {
		start--
	}
	for end < len(content) && !utf8.RuneStart(content[end]) {
		end++
	}

	out := strings.TrimSpace(content[start:end])
	if start > 0 {
		out = "..." + out
	}
	if end < len(content) {
		out += "..."
	}
	return out
}
