package commands

import (
	"github.com/spf13/cobra"

	"github.com/erraggy/dotmap/internal/mcpserver"
)

func newMCPCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "mcp",
		GroupID: groupUtility,
		Short:   "Run the MCP server over stdio",
		Long: `Run a Model Context Protocol server over stdio that exposes the get, set,
map, reverse and structure tools. Defaults are read from DOTMAP_*
environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return mcpserver.Run(cmd.Context())
		},
	}
}
