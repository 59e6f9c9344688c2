package commands

import (
	"github.com/spf13/cobra"

	"github.com/erraggy/dotmap"
	"github.com/erraggy/dotmap/internal/cliutil"
)

func newVersionCommand() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:     "version",
		GroupID: groupUtility,
		Short:   "Print the dotmap version",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if verbose {
				cliutil.Writef(cmd.OutOrStdout(), "%s\n", dotmap.BuildInfo())
				return nil
			}
			cliutil.Writef(cmd.OutOrStdout(), "dotmap v%s\n", dotmap.Version())
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print commit, build time and Go version")
	return cmd
}
