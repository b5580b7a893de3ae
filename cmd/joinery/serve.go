package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	joinerymcp "github.com/gorewood/joinery/internal/mcp"
)

// newServeCmd creates the serve command for running as an MCP server.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run as MCP server (stdio transport)",
		Long: `Run joinery as a Model Context Protocol (MCP) server over stdio.

This exposes joinery operations as MCP tools that any MCP-capable agent
environment can use (Claude Code, Cursor, Windsurf, Gemini CLI, etc).

Configure in your agent's MCP settings:
  {
    "mcpServers": {
      "joinery": {
        "command": "joinery",
        "args": ["serve"]
      }
    }
  }

Available tools: list_catalog, inspect, sync`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			server := joinerymcp.NewServer(buildVersion())
			return server.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}
