// Package corpus defines the immutable document set that versions are
// computed from. A Corpus is canonically ordered so that the same content
// always produces the same content hash, regardless of how it was assembled.
package corpus

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Document is a single knowledge page. Immutable once stored.
type Document struct {
	// Path is the stable identifier, e.g. "rulebook.md".
	Path string
	// Content is the raw page text.
	Content string
}

// Corpus is the full set of documents at a point in time, ordered by path.
type Corpus struct {
	docs []Document
}

// New builds a Corpus from a path -> content map.
func New(pages map[string]string) *Corpus {
	docs := make([]Document, 0, len(pages))
	for path, content := range pages {
		docs = append(docs, Document{Path: path, Content: content})
	}
	return FromDocuments(docs)
}

// FromDocuments builds a Corpus from a document slice. Input order is
// irrelevant; documents are sorted by path. Duplicate paths keep the last
// occurrence.
func FromDocuments(docs []Document) *Corpus {
	byPath := make(map[string]Document, len(docs))
	for _, d := range docs {
		byPath[d.Path] = d
	}
	sorted := make([]Document, 0, len(byPath))
	for _, d := range byPath {
		sorted = append(sorted, d)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })
	return &Corpus{docs: sorted}
}

// LoadDir builds a Corpus from all .md files under dir (non-recursive).
// Paths are the file names relative to dir.
func LoadDir(dir string) (*Corpus, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read corpus directory %s: %w", dir, err)
	}

	var docs []Document
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read page %s: %w", e.Name(), err)
		}
		docs = append(docs, Document{Path: e.Name(), Content: string(data)})
	}
	return FromDocuments(docs), nil
}

// Hash returns the canonical content hash of the corpus: SHA-256 over the
// sorted (path, content) pairs with NUL separators. Identical content always
// yields the identical hash.
func (c *Corpus) Hash() string {
	h := sha256.New()
	for _, d := range c.docs {
		h.Write([]byte(d.Path))
		h.Write([]byte{0})
		h.Write([]byte(d.Content))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Documents returns the documents in canonical (path) order.
// Callers must not mutate the returned slice.
func (c *Corpus) Documents() []Document {
	return c.docs
}

// Paths returns the document paths in canonical order.
func (c *Corpus) Paths() []string {
	paths := make([]string, len(c.docs))
	for i, d := range c.docs {
		paths[i] = d.Path
	}
	return paths
}

// Get returns a document by path, trying slash/underscore variants the way
// callers commonly misspell wiki paths.
func (c *Corpus) Get(path string) (Document, bool) {
	for _, candidate := range []string{path, strings.ReplaceAll(path, "/", "_"), strings.ReplaceAll(path, "_", "/")} {
		if i := sort.Search(len(c.docs), func(i int) bool { return c.docs[i].Path >= candidate }); i < len(c.docs) && c.docs[i].Path == candidate {
			return c.docs[i], true
		}
	}
	return Document{}, false
}

// Len returns the number of documents.
func (c *Corpus) Len() int {
	return len(c.docs)
}
