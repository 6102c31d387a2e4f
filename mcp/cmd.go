package mcp

import (
	"github.com/ka2n/csvboard/api"
	"github.com/spf13/cobra"
)

// Command returns the MCP server command. load is called once when the
// command runs, after flags are parsed.
func Command(load func() (*api.Board, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server",
		Long:  "Serve the configured datasets to MCP clients over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := load()
			if err != nil {
				return err
			}
			return NewServer(board).Run()
		},
	}
}
