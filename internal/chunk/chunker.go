// Package chunk decomposes documents into deterministic retrieval units.
//
// The strategy is paragraph-aligned spans: a document is cut at blank-line
// boundaries, adjacent paragraphs are packed into chunks up to MaxChars, and
// oversized paragraphs are hard-split at rune boundaries. Chunks are
// contiguous byte spans: separator whitespace belongs to the preceding
// chunk and the last chunk ends at len(text), so every character of the
// document is covered by exactly one chunk.
//
// Chunking is a pure function: the same document text always yields the same
// boundaries and the same chunk ids.
package chunk

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/knowhub/wikidex/internal/corpus"
)

// DefaultMaxChars bounds chunk size so embeddings stay within model input
// limits. 2000 chars is roughly 500 tokens.
const DefaultMaxChars = 2000

// Chunk is a retrievable sub-span of a document.
type Chunk struct {
	// ID is derived from (document path, start offset) and is stable across
	// rebuilds of identical document content.
	ID string
	// DocPath is the owning document identifier.
	DocPath string
	// Content is the raw text span, including any trailing separator
	// whitespace up to the next chunk.
	Content string
	// Start and End are byte offsets into the document ([Start, End)).
	Start int
	End   int
}

// Chunker splits documents into chunks.
type Chunker struct {
	maxChars int
}

// NewChunker creates a chunker with the given size bound.
// maxChars <= 0 selects DefaultMaxChars.
func NewChunker(maxChars int) *Chunker {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Chunker{maxChars: maxChars}
}

// Chunk splits a document into chunks. An empty document yields no chunks;
// a whitespace-only document yields a single chunk covering the whole text.
func (c *Chunker) Chunk(doc corpus.Document) []Chunk {
	text := doc.Content
	if text == "" {
		return nil
	}

	cuts := c.boundaries(text)

	chunks := make([]Chunk, 0, len(cuts))
	start := 0
	for _, end := range cuts {
		chunks = append(chunks, Chunk{
			ID:      ChunkID(doc.Path, start),
			DocPath: doc.Path,
			Content: text[start:end],
			Start:   start,
			End:     end,
		})
		start = end
	}
	return chunks
}

// boundaries returns the ascending chunk end offsets, the last one being
// len(text). Cut candidates are paragraph breaks (blank lines); a running
// chunk is closed when adding the next paragraph would exceed maxChars.
func (c *Chunker) boundaries(text string) []int {
	paragraphEnds := paragraphBreaks(text)

	var cuts []int
	chunkStart := 0
	prevEnd := 0
	for _, end := range paragraphEnds {
		if end-chunkStart > c.maxChars {
			if prevEnd > chunkStart {
				// Close the running chunk at the previous paragraph break.
				cuts = append(cuts, prevEnd)
				chunkStart = prevEnd
			}
			// A single paragraph may still exceed the bound; hard-split it.
			for end-chunkStart > c.maxChars {
				split := runeAlignedOffset(text, chunkStart+c.maxChars)
				if split <= chunkStart || split >= end {
					break
				}
				cuts = append(cuts, split)
				chunkStart = split
			}
		}
		prevEnd = end
	}
	if len(cuts) == 0 || cuts[len(cuts)-1] != len(text) {
		cuts = append(cuts, len(text))
	}
	return cuts
}

// paragraphBreaks returns offsets just past each blank-line separator,
// terminated by len(text). The separator is attached to the preceding
// paragraph so spans stay contiguous.
func paragraphBreaks(text string) []int {
	var ends []int
	offset := 0
	for {
		i := strings.Index(text[offset:], "\n\n")
		if i < 0 {
			break
		}
		sep := offset + i
		// Extend past the full run of newlines.
		for sep < len(text) && text[sep] == '\n' {
			sep++
		}
		ends = append(ends, sep)
		offset = sep
	}
	ends = append(ends, len(text))
	return ends
}

// runeAlignedOffset moves offset left to the nearest rune start so hard
// splits never cut a UTF-8 sequence.
func runeAlignedOffset(text string, offset int) int {
	if offset >= len(text) {
		return len(text)
	}
	for offset > 0 && !utf8.RuneStart(text[offset]) {
		offset--
	}
	return offset
}

// ChunkID derives the stable chunk identifier from the document path and the
// chunk's start offset.
func ChunkID(docPath string, start int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", docPath, start)))
	return hex.EncodeToString(sum[:])[:16]
}
