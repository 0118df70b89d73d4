package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash_Idempotent(t *testing.T) {
	// Given: the same corpus content
	c := New(map[string]string{
		"rulebook.md": "Employees may request time off.",
		"merger.md":   "The company was acquired.",
	})

	// Then: hashing twice yields the same digest
	assert.Equal(t, c.Hash(), c.Hash())
}

func TestHash_IndependentOfInsertionOrder(t *testing.T) {
	a := FromDocuments([]Document{
		{Path: "a.md", Content: "alpha"},
		{Path: "b.md", Content: "beta"},
	})
	b := FromDocuments([]Document{
		{Path: "b.md", Content: "beta"},
		{Path: "a.md", Content: "alpha"},
	})

	assert.Equal(t, a.Hash(), b.Hash())
}

func TestHash_ChangesWithContent(t *testing.T) {
	a := New(map[string]string{"a.md": "alpha"})
	b := New(map[string]string{"a.md": "alpha!"})
	c := New(map[string]string{"b.md": "alpha"})

	assert.NotEqual(t, a.Hash(), b.Hash(), "content change must change the hash")
	assert.NotEqual(t, a.Hash(), c.Hash(), "path change must change the hash")
}

func TestHash_SeparatorsPreventCollisions(t *testing.T) {
	// "ab"+"c" vs "a"+"bc" must not hash identically
	a := New(map[string]string{"ab": "c"})
	b := New(map[string]string{"a": "bc"})
	assert.NotEqual(t, a.Hash(), b.Hash())
}

func TestGet_NormalizesSlashUnderscore(t *testing.T) {
	c := New(map[string]string{"hr_policies.md": "body"})

	doc, ok := c.Get("hr/policies.md")
	require.True(t, ok)
	assert.Equal(t, "hr_policies.md", doc.Path)

	_, ok = c.Get("missing.md")
	assert.False(t, ok)
}

func TestLoadDir_ReadsOnlyMarkdown(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("alpha"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte("beta"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.txt"), []byte("nope"), 0o644))

	c, err := LoadDir(dir)
	require.NoError(t, err)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []string{"a.md", "b.md"}, c.Paths())
}
