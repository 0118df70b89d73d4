package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/knowhub/wikidex/internal/corpus"
	"github.com/knowhub/wikidex/internal/version"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	dir     string
	topK    int
	version string // pin to a published version instead of live content
	format  string // "text", "json"
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the knowledge base",
		Long: `Search runs the hybrid engine over the current version of the
knowledge base. Queries containing regex operators match as patterns;
plain prose queries are answered by semantic and keyword matching.

Examples:
  wikidex search "who approves expense reports"
  wikidex search "EXP-[0-9]{4}" --top-k 3
  wikidex search "travel policy" --version 1a2b3c4d5e6f7a8b
  wikidex search "refund rules" --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runSearch(cmd.Context(), cmd, query, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.dir, "dir", "d", ".", "Knowledge base directory")
	cmd.Flags().IntVarP(&opts.topK, "top-k", "n", 0, "Maximum number of results (0 uses config)")
	cmd.Flags().StringVar(&opts.version, "version", "", "Search a pinned version id instead of live content")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runSearch(ctx context.Context, cmd *cobra.Command, query string, opts searchOptions) error {
	comp, err := newComponents()
	if err != nil {
		return err
	}

	h, err := searchHandle(ctx, comp.resolver, opts)
	if err != nil {
		return err
	}

	topK := opts.topK
	if topK <= 0 {
		topK = comp.cfg.Search.TopK
	}
	results, err := comp.engine.Search(ctx, h, query, topK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	switch opts.format {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	default:
		out := newRenderer(cmd.OutOrStdout())
		out.Results(h.ID(), query, results)
		return nil
	}
}

// searchHandle resolves the version to search: a pinned one when
// --version is given, the live directory content otherwise.
func searchHandle(ctx context.Context, r *version.Resolver, opts searchOptions) (*version.Handle, error) {
	if opts.version != "" {
		return r.ResolveHash(ctx, opts.version)
	}
	c, err := corpus.LoadDir(opts.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load knowledge base: %w", err)
	}
	return r.Resolve(ctx, c)
}
