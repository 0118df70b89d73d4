package cmd

import (
	"github.com/spf13/cobra"
)

func newVersionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "versions",
		Short: "List published knowledge base versions",
		Long: `Versions lists every version in the store, newest first. Each
version is an immutable snapshot addressed by its content hash; the
id shown here can pin searches with 'wikidex search --version'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			comp, err := newComponents()
			if err != nil {
				return err
			}
			infos, err := comp.resolver.Versions()
			if err != nil {
				return err
			}
			out := newRenderer(cmd.OutOrStdout())
			out.Versions(infos)
			return nil
		},
	}
}
