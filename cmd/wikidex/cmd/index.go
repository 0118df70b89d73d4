package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/knowhub/wikidex/internal/corpus"
)

func newIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index [dir]",
		Short: "Index the knowledge base into a new version",
		Long: `Index reads every markdown page under the directory, chunks and
embeds it, and publishes the result as an immutable version. Content
that was indexed before resolves to the existing version instead of
building a new one.

Examples:
  wikidex index
  wikidex index ./docs`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runIndex(cmd.Context(), cmd, dir)
		},
	}
	return cmd
}

func runIndex(ctx context.Context, cmd *cobra.Command, dir string) error {
	comp, err := newComponents()
	if err != nil {
		return err
	}

	c, err := corpus.LoadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to load knowledge base: %w", err)
	}

	changed, h, err := comp.resolver.Sync(ctx, c)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}
	slog.Info("index_complete",
		slog.String("version", h.ID()),
		slog.Int("pages", len(h.Documents())),
		slog.Bool("changed", changed))

	out := newRenderer(cmd.OutOrStdout())
	out.Resolved(h.ID(), len(h.Documents()), len(h.Chunks()), h.Model(), changed)
	if h.Matrix() == nil {
		newRenderer(cmd.ErrOrStderr()).Warning(
			"version published without embeddings; semantic search is disabled")
	}
	return nil
}
