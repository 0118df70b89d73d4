// Package ui renders search results and version information for the
// terminal, with automatic fallback to plain output when stdout is not a
// TTY.
package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/knowhub/wikidex/internal/search"
	"github.com/knowhub/wikidex/internal/store"
)

// Renderer writes human-readable output for CLI commands.
type Renderer struct {
	w      io.Writer
	styles Styles
}

// NewRenderer creates a renderer with color when w is a terminal.
func NewRenderer(w io.Writer) *Renderer {
	styles := NoColorStyles()
	if isTerminal(w) {
		styles = DefaultStyles()
	}
	return &Renderer{w: w, styles: styles}
}

// NewPlainRenderer creates a renderer that never emits color.
func NewPlainRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w, styles: NoColorStyles()}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Results renders a ranked result list for a query.
func (r *Renderer) Results(versionID, query string, results []search.Result) {
	if len(results) == 0 {
		fmt.Fprintf(r.w, "%s\n",
			r.styles.Dim.Render(fmt.Sprintf("no results for %q in version %s", query, versionID)))
		return
	}

	fmt.Fprintf(r.w, "%s %s\n\n",
		r.styles.Header.Render(fmt.Sprintf("%d result(s) for %q", len(results), query)),
		r.styles.Dim.Render("["+versionID+"]"))

	for i, res := range results {
		fmt.Fprintf(r.w, "%2d. %s  %s %s\n",
			i+1,
			r.styles.Path.Render(res.DocPath),
			r.styles.Score.Render(fmt.Sprintf("%.3f", res.Score)),
			r.styles.Stream.Render("("+string(res.Stream)+")"))
		fmt.Fprintf(r.w, "    %s\n", r.styles.Snippet.Render(res.Snippet))
	}
}

// Versions renders the catalog listing.
func (r *Renderer) Versions(infos []store.Info) {
	if len(infos) == 0 {
		fmt.Fprintln(r.w, r.styles.Dim.Render("no versions published yet"))
		return
	}

	fmt.Fprintln(r.w, r.styles.Header.Render("published versions (newest first)"))
	for _, info := range infos {
		fmt.Fprintf(r.w, "  %s  %s  %s\n",
			r.styles.Path.Render(info.ID),
			info.CreatedAt.Local().Format(time.RFC3339),
			r.styles.Stream.Render(fmt.Sprintf("%d pages, %d chunks, model %s",
				info.PageCount, info.ChunkCount, info.Model)))
	}
}

// Resolved renders the outcome of an index/resolve run.
func (r *Renderer) Resolved(versionID string, pages, chunks int, model string, changed bool) {
	status := "unchanged"
	if changed {
		status = "new content"
	}
	fmt.Fprintf(r.w, "%s %s\n",
		r.styles.Header.Render("version "+versionID),
		r.styles.Dim.Render("("+status+")"))
	fmt.Fprintf(r.w, "  %s\n",
		r.styles.Stream.Render(fmt.Sprintf("%d pages, %d chunks, model %s", pages, chunks, model)))
}

// Error renders an error line.
func (r *Renderer) Error(err error) {
	fmt.Fprintf(r.w, "%s %s\n", r.styles.Error.Render("error:"), err.Error())
}

// Warning renders a warning line.
func (r *Renderer) Warning(msg string) {
	fmt.Fprintf(r.w, "%s %s\n", r.styles.Warning.Render("warning:"), msg)
}
