package ui

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/knowhub/wikidex/internal/search"
	"github.com/knowhub/wikidex/internal/store"
)

func TestRenderer_Results(t *testing.T) {
	var buf bytes.Buffer
	r := NewPlainRenderer(&buf)

	r.Results("abc123def4567890", "who acquired us", []search.Result{
		{DocPath: "merger.md", Score: 0.661, Stream: search.StreamSemantic, Snippet: "Initech acquired us in March 2026."},
		{DocPath: "handbook.md", Score: 0.4, Stream: search.StreamKeyword, Snippet: "Vacation is twenty days."},
	})

	out := buf.String()
	assert.Contains(t, out, `2 result(s) for "who acquired us"`)
	assert.Contains(t, out, "merger.md")
	assert.Contains(t, out, "0.661")
	assert.Contains(t, out, "(semantic)")
	assert.Contains(t, out, "Initech acquired us")
}

func TestRenderer_EmptyResults(t *testing.T) {
	var buf bytes.Buffer
	r := NewPlainRenderer(&buf)

	r.Results("abc123def4567890", "salary|privacy", nil)

	assert.Contains(t, buf.String(), "no results")
}

func TestRenderer_Versions(t *testing.T) {
	var buf bytes.Buffer
	r := NewPlainRenderer(&buf)

	r.Versions([]store.Info{
		{ID: "abc123def4567890", CreatedAt: time.Now(), PageCount: 3, ChunkCount: 12, Model: "hashing-256"},
	})

	out := buf.String()
	assert.Contains(t, out, "abc123def4567890")
	assert.Contains(t, out, "3 pages, 12 chunks")
}

func TestRenderer_NoVersions(t *testing.T) {
	var buf bytes.Buffer
	r := NewPlainRenderer(&buf)

	r.Versions(nil)

	assert.Contains(t, buf.String(), "no versions published yet")
}

func TestRenderer_ResolvedAndError(t *testing.T) {
	var buf bytes.Buffer
	r := NewPlainRenderer(&buf)

	r.Resolved("abc123def4567890", 2, 7, "hashing-256", true)
	r.Error(errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, "version abc123def4567890")
	assert.Contains(t, out, "new content")
	assert.Contains(t, out, "error: boom")
}

func TestNewRenderer_PlainForBuffers(t *testing.T) {
	// A bytes.Buffer is not a TTY, so no escape sequences appear
	var buf bytes.Buffer
	r := NewRenderer(&buf)

	r.Results("v", "q", []search.Result{{DocPath: "a.md", Score: 0.5, Stream: search.StreamKeyword, Snippet: "x"}})

	assert.NotContains(t, buf.String(), "\x1b[")
}
