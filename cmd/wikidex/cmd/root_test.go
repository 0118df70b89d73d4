package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowhub/wikidex/internal/embed"
)

// setupEnv points the store at a temp directory and resets the embedding
// singleton so tests do not share state through the process-wide provider.
func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("WIKIDEX_STORAGE_DIR", filepath.Join(t.TempDir(), "versions"))
	embed.ResetDefault()
	t.Cleanup(embed.ResetDefault)
}

// writeKB creates a small knowledge base directory.
func writeKB(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	pages := map[string]string{
		"expenses.md": "# Expenses\n\nReports MUST be submitted within thirty days of purchase.",
		"merger.md":   "# Merger\n\nInitech acquired us in March 2026.",
	}
	for name, body := range pages {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCmd_ShowsHelp(t *testing.T) {
	// Given: a root command

	// When: executing with --help
	out, err := execute(t, "--help")

	// Then: usage lists the subcommands
	require.NoError(t, err)
	assert.Contains(t, out, "wikidex")
	assert.Contains(t, out, "index")
	assert.Contains(t, out, "search")
	assert.Contains(t, out, "versions")
	assert.Contains(t, out, "serve")
}

func TestRootCmd_Version(t *testing.T) {
	out, err := execute(t, "--version")

	require.NoError(t, err)
	assert.Contains(t, out, "wikidex version "+cliVersion)
}
