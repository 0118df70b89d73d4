package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowhub/wikidex/internal/corpus"
	"github.com/knowhub/wikidex/internal/embed"
	"github.com/knowhub/wikidex/internal/store"
	"github.com/knowhub/wikidex/internal/version"
)

// newTestHandle builds and publishes a version for the given pages.
func newTestHandle(t *testing.T, pages map[string]string, embedOpts embed.Options) *version.Handle {
	t.Helper()
	embed.ResetDefault()
	t.Cleanup(embed.ResetDefault)

	st, err := store.New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	r, err := version.NewResolver(st, 4, version.WithEmbedOptions(embedOpts))
	require.NoError(t, err)

	h, err := r.Resolve(context.Background(), corpus.New(pages))
	require.NoError(t, err)
	return h
}

func searchPages() map[string]string {
	return map[string]string{
		"merger.md":   "# Merger\n\nInitech acquired us in March 2026.",
		"meetings.md": "# Meetings\n\nWeekly sync happens each Monday at ten.",
		"people.md":   "# People\n\nDana Kim is a notable engineer and received an award for mentoring.",
	}
}

func TestHybridEngine_UnrelatedPatternReturnsNothing(t *testing.T) {
	// Given a knowledge base with no salary or privacy content
	h := newTestHandle(t, searchPages(), embed.Options{})
	e := NewHybridEngine(embed.Options{}, 0)

	// When searching for a pattern that matches nothing
	results, err := e.Search(context.Background(), h, "salary|privacy", 5)

	// Then the result is empty: no stream invents a match
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestHybridEngine_NoiseFloorSeparatesUnrelatedQueries(t *testing.T) {
	// Given a two-page knowledge base where the pattern query shares no
	// content but its cleaned text still grazes the merger sentence through
	// trigram overlap (raw cosine just under 0.2)
	pages := map[string]string{
		"rulebook.md": "Employees may request time off with manager approval.",
		"merger.md":   "AI Excellence Group INTERNATIONAL acquired the company.",
	}
	h := newTestHandle(t, pages, embed.Options{})
	e := NewHybridEngine(embed.Options{}, 0)

	// When searching for a pattern that matches neither document
	results, err := e.Search(context.Background(), h, "salary|privacy", 5)

	// Then no stream surfaces anything: the semantic floor rejects the
	// trigram noise
	require.NoError(t, err)
	assert.Empty(t, results)

	// And a genuine single-shared-term question still clears the floor
	results, err = e.Search(context.Background(), h, "who acquired us", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "merger.md", results[0].DocPath)
	assert.Equal(t, StreamSemantic, results[0].Stream)
	assert.GreaterOrEqual(t, results[0].Score, SemanticScoreMin)
}

func TestHybridEngine_SemanticHitWithoutSharedPhrasing(t *testing.T) {
	// Given a question phrased unlike the page text
	h := newTestHandle(t, searchPages(), embed.Options{})
	e := NewHybridEngine(embed.Options{}, 0)

	// When searching
	results, err := e.Search(context.Background(), h, "who acquired us", 5)

	// Then the merger chunk ranks first through the semantic stream
	require.NoError(t, err)
	require.NotEmpty(t, results)
	top := results[0]
	assert.Equal(t, "merger.md", top.DocPath)
	assert.Equal(t, StreamSemantic, top.Stream)
	assert.GreaterOrEqual(t, top.Score, SemanticScoreMin)
	assert.LessOrEqual(t, top.Score, 1.0)
}

func TestHybridEngine_PatternHitScoresFixedAndDeduped(t *testing.T) {
	// Given a pattern that matches one chunk which semantic and keyword
	// streams also find
	h := newTestHandle(t, searchPages(), embed.Options{})
	e := NewHybridEngine(embed.Options{}, 0)

	// When searching
	results, err := e.Search(context.Background(), h, "notable|award", 5)

	// Then the chunk appears exactly once, at the fixed pattern score
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "people.md", results[0].DocPath)
	assert.Equal(t, RegexScore, results[0].Score)
	assert.Equal(t, StreamRegex, results[0].Stream)

	seen := 0
	for _, r := range results {
		if r.ChunkID == results[0].ChunkID {
			seen++
		}
	}
	assert.Equal(t, 1, seen)
}

func TestHybridEngine_MalformedPatternDegrades(t *testing.T) {
	// Given a query with an unclosed bracket
	h := newTestHandle(t, searchPages(), embed.Options{})
	e := NewHybridEngine(embed.Options{}, 0)

	// When searching
	results, err := e.Search(context.Background(), h, "notable[", 5)

	// Then the query still succeeds through the remaining streams
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "people.md", results[0].DocPath)
}

func TestHybridEngine_DegradedWithoutEmbedder(t *testing.T) {
	// Given a version built while the embedding provider was disabled
	h := newTestHandle(t, searchPages(), embed.Options{Provider: "none"})
	e := NewHybridEngine(embed.Options{Provider: "none"}, 0)

	// When searching with plain prose
	results, err := e.Search(context.Background(), h, "who acquired us", 5)

	// Then the keyword stream still answers, capped at its band
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "merger.md", results[0].DocPath)
	assert.Equal(t, StreamKeyword, results[0].Stream)
	assert.LessOrEqual(t, results[0].Score, KeywordScoreMax)
}

func TestHybridEngine_DeterministicOrdering(t *testing.T) {
	h := newTestHandle(t, searchPages(), embed.Options{})
	e := NewHybridEngine(embed.Options{}, 0)
	ctx := context.Background()

	first, err := e.Search(ctx, h, "who acquired us", 5)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := e.Search(ctx, h, "who acquired us", 5)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestHybridEngine_TopKTruncation(t *testing.T) {
	// Given many chunks sharing one query token
	pages := map[string]string{
		"a.md": "# A\n\nThe vacation policy covers full-time staff.",
		"b.md": "# B\n\nThe travel policy requires advance booking.",
		"c.md": "# C\n\nThe expense policy caps meals at fifty euros.",
		"d.md": "# D\n\nThe security policy mandates two-factor login.",
	}
	h := newTestHandle(t, pages, embed.Options{})
	e := NewHybridEngine(embed.Options{}, 0)

	results, err := e.Search(context.Background(), h, "policy", 2)

	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestHybridEngine_EmptyCorpus(t *testing.T) {
	h := newTestHandle(t, map[string]string{}, embed.Options{})
	e := NewHybridEngine(embed.Options{}, 0)

	results, err := e.Search(context.Background(), h, "anything at all", 5)

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRegexSearcher_InactiveForProse(t *testing.T) {
	h := newTestHandle(t, searchPages(), embed.Options{})

	results, err := NewRegexSearcher().Search(context.Background(), h, NewPlan("plain words"))

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestKeywordSearcher_OverlapRatio(t *testing.T) {
	h := newTestHandle(t, searchPages(), embed.Options{})

	// Two of three distinct query tokens appear in the merger chunk
	results, err := NewKeywordSearcher().Search(context.Background(), h, NewPlan("acquired us someday"))

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "merger.md", results[0].DocPath)
	assert.InDelta(t, 2.0/3.0*KeywordScoreMax, results[0].Score, 1e-9)
}

func TestSemanticSearcher_ShortQuerySkipped(t *testing.T) {
	h := newTestHandle(t, searchPages(), embed.Options{})
	s := NewSemanticSearcher(embed.Options{}, 0, nil)

	results, err := s.Search(context.Background(), h, NewPlan("hi"))

	require.NoError(t, err)
	assert.Empty(t, results)
}
