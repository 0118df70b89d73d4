package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowhub/wikidex/internal/corpus"
)

func doc(path, content string) corpus.Document {
	return corpus.Document{Path: path, Content: content}
}

func TestChunk_Deterministic(t *testing.T) {
	// Given: a multi-paragraph document
	d := doc("policy.md", "First paragraph.\n\nSecond paragraph.\n\nThird paragraph.")
	c := NewChunker(0)

	// When: chunking twice
	a := c.Chunk(d)
	b := c.Chunk(d)

	// Then: identical ids and boundaries
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].ID, b[i].ID)
		assert.Equal(t, a[i].Start, b[i].Start)
		assert.Equal(t, a[i].End, b[i].End)
	}
}

func TestChunk_FullCoverage(t *testing.T) {
	// Given: a document with uneven paragraph sizes
	text := "Intro.\n\n\n" + strings.Repeat("word ", 600) + "\n\nOutro paragraph."
	d := doc("big.md", text)

	chunks := NewChunker(500).Chunk(d)
	require.NotEmpty(t, chunks)

	// Then: chunks are contiguous spans covering every byte
	assert.Equal(t, 0, chunks[0].Start)
	for i := 1; i < len(chunks); i++ {
		assert.Equal(t, chunks[i-1].End, chunks[i].Start, "chunks must be contiguous")
	}
	assert.Equal(t, len(text), chunks[len(chunks)-1].End)

	// And: reassembling the spans reproduces the document
	var sb strings.Builder
	for _, ch := range chunks {
		sb.WriteString(ch.Content)
	}
	assert.Equal(t, text, sb.String())
}

func TestChunk_RespectsMaxChars(t *testing.T) {
	text := strings.Repeat("a", 950) // single oversized paragraph
	chunks := NewChunker(300).Chunk(doc("a.md", text))

	require.Len(t, chunks, 4) // 300+300+300+50
	for _, ch := range chunks {
		assert.LessOrEqual(t, len(ch.Content), 300)
	}
}

func TestChunk_PacksSmallParagraphs(t *testing.T) {
	text := "one.\n\ntwo.\n\nthree."
	chunks := NewChunker(1000).Chunk(doc("s.md", text))

	// Everything fits in one chunk
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0].Content)
}

func TestChunk_SplitsAtParagraphBoundary(t *testing.T) {
	p1 := strings.Repeat("x", 180) // + 2 separator bytes = 182
	p2 := strings.Repeat("y", 180)
	chunks := NewChunker(200).Chunk(doc("p.md", p1+"\n\n"+p2))

	require.Len(t, chunks, 2)
	assert.Equal(t, p1+"\n\n", chunks[0].Content)
	assert.Equal(t, p2, chunks[1].Content)
}

func TestChunk_EmptyDocument(t *testing.T) {
	assert.Empty(t, NewChunker(0).Chunk(doc("empty.md", "")))
}

func TestChunk_IDStableAcrossContentAfterOffset(t *testing.T) {
	// Chunk ids depend on (path, start offset) only, so a prefix-identical
	// document keeps its leading chunk ids across rebuilds.
	a := NewChunker(100).Chunk(doc("d.md", strings.Repeat("a", 250)))
	b := NewChunker(100).Chunk(doc("d.md", strings.Repeat("a", 251)))

	require.GreaterOrEqual(t, len(a), 2)
	assert.Equal(t, a[0].ID, b[0].ID)
	assert.Equal(t, a[1].ID, b[1].ID)
}

func TestChunk_IDDiffersAcrossDocuments(t *testing.T) {
	a := NewChunker(0).Chunk(doc("a.md", "same text"))
	b := NewChunker(0).Chunk(doc("b.md", "same text"))

	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.NotEqual(t, a[0].ID, b[0].ID)
}

func TestChunk_HardSplitIsRuneSafe(t *testing.T) {
	// Multi-byte runes positioned across the split boundary
	text := strings.Repeat("é", 300) // 600 bytes
	chunks := NewChunker(251).Chunk(doc("u.md", text))

	for _, ch := range chunks {
		assert.True(t, strings.HasPrefix(ch.Content, "é") || ch.Content == "",
			"split must not cut a UTF-8 sequence")
	}
}
