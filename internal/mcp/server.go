// Package mcp provides a Model Context Protocol server for joinery.
// It exposes the catalog and the sync pipeline as MCP tools that any
// MCP-capable agent can use.
package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer creates an MCP server with all joinery tools registered.
func NewServer(version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "joinery",
		Version: version,
	}, nil)
	registerTools(server)
	return server
}

// boolPtr returns a pointer to a bool value.
func boolPtr(b bool) *bool {
	return &b
}

// readOnlyAnnotations returns annotations for tools that never write.
// openWorld marks tools that may fetch a remote catalog.
func readOnlyAnnotations(openWorld bool) *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		ReadOnlyHint:   true,
		IdempotentHint: true,
		OpenWorldHint:  boolPtr(openWorld),
	}
}

// syncAnnotations returns annotations for the sync tool: it writes, but
// additively and idempotently, never destructively.
func syncAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		DestructiveHint: boolPtr(false),
		IdempotentHint:  true,
		OpenWorldHint:   boolPtr(true),
	}
}

// registerTools adds all joinery tools to the server.
func registerTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name: "list_catalog",
		Description: "List every skill in the catalog with its trigger description and tier. " +
			"Accepts a local directory or a remote zip archive URL as the origin.",
		Annotations: readOnlyAnnotations(true),
	}, handleListCatalog())

	mcp.AddTool(server, &mcp.Tool{
		Name: "inspect",
		Description: "Fingerprint a project: detect its stack tags from the dependency manifest, " +
			"guess the layout, and report any skills already active in its orchestration file.",
		Annotations: readOnlyAnnotations(false),
	}, handleInspect())

	mcp.AddTool(server, &mcp.Tool{
		Name: "sync",
		Description: "Match catalog skills against a project and write its orchestration files. " +
			"Defaults to a preview; set apply=true to write. User-authored rules sections survive reruns.",
		Annotations: syncAnnotations(),
	}, handleSync())
}
