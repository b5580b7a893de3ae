package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gorewood/joinery/internal/catalog"
	"github.com/gorewood/joinery/internal/config"
	"github.com/gorewood/joinery/internal/output"
	"github.com/gorewood/joinery/internal/pipeline"
	"github.com/gorewood/joinery/internal/project"
)

// --- Shared types ---

// EntrySummary is one catalog entry for output.
type EntrySummary struct {
	ID          string `json:"id"                jsonschema:"entry slug"`
	Description string `json:"description"       jsonschema:"one-line description"`
	Trigger     string `json:"trigger,omitempty" jsonschema:"free-text trigger description"`
	Tier        string `json:"tier"              jsonschema:"capability tier: knowledge, tool, or hybrid"`
	Always      bool   `json:"always,omitempty"  jsonschema:"selected for every project"`
}

func toEntrySummaries(entries []catalog.Entry) []EntrySummary {
	out := make([]EntrySummary, 0, len(entries))
	for _, entry := range entries {
		out = append(out, EntrySummary{
			ID:          entry.ID,
			Description: entry.Description,
			Trigger:     entry.Trigger,
			Tier:        string(entry.Tier),
			Always:      entry.Always,
		})
	}
	return out
}

// --- list_catalog tool ---

// ListCatalogInput is the input for the list_catalog tool.
type ListCatalogInput struct {
	CatalogOrigin string `json:"catalog_origin,omitempty" jsonschema:"local directory or zip archive URL; defaults to the configured origin"`
}

// ListCatalogOutput is the output for the list_catalog tool.
type ListCatalogOutput struct {
	Origin   string         `json:"origin"             jsonschema:"resolved catalog origin"`
	Count    int            `json:"count"              jsonschema:"number of entries"`
	Entries  []EntrySummary `json:"entries"            jsonschema:"catalog entries sorted by id"`
	Warnings []string       `json:"warnings,omitempty" jsonschema:"entries skipped at load time"`
}

func handleListCatalog() mcp.ToolHandlerFor[ListCatalogInput, ListCatalogOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ListCatalogInput) (*mcp.CallToolResult, ListCatalogOutput, error) {
		origin := config.ResolveOrigin(input.CatalogOrigin)
		src, err := catalog.Open(ctx, origin, config.DefaultFetchTimeout)
		if err != nil {
			return nil, ListCatalogOutput{}, fmt.Errorf("opening catalog: %w", err)
		}
		defer func() { _ = src.Close() }()

		entries := src.List()
		out := ListCatalogOutput{
			Origin:   origin,
			Count:    len(entries),
			Entries:  toEntrySummaries(entries),
			Warnings: src.Warnings(),
		}
		return nil, out, nil
	}
}

// --- inspect tool ---

// InspectInput is the input for the inspect tool.
type InspectInput struct {
	ProjectRoot string `json:"project_root,omitempty" jsonschema:"project directory to inspect; defaults to the current directory"`
}

// InspectOutput is the output for the inspect tool.
type InspectOutput struct {
	Fingerprint project.Fingerprint `json:"fingerprint" jsonschema:"detected stack fingerprint"`
}

func handleInspect() mcp.ToolHandlerFor[InspectInput, InspectOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input InspectInput) (*mcp.CallToolResult, InspectOutput, error) {
		root := input.ProjectRoot
		if root == "" {
			root = "."
		}
		fp, err := project.Inspect(root)
		if err != nil {
			return nil, InspectOutput{}, fmt.Errorf("inspecting project: %w", err)
		}
		return nil, InspectOutput{Fingerprint: fp}, nil
	}
}

// --- sync tool ---

// SyncInput is the input for the sync tool.
type SyncInput struct {
	ProjectRoot   string `json:"project_root,omitempty"   jsonschema:"project directory to sync; defaults to the current directory"`
	CatalogOrigin string `json:"catalog_origin,omitempty" jsonschema:"local directory or zip archive URL; defaults to the configured origin"`
	Apply         bool   `json:"apply,omitempty"          jsonschema:"write files; false previews the plan without touching the project"`
	MatchPolicy   string `json:"match_policy,omitempty"   jsonschema:"trigger policy: any (default) or all"`
	Name          string `json:"name,omitempty"           jsonschema:"override the detected project name"`
	Purpose       string `json:"purpose,omitempty"        jsonschema:"override the detected project purpose"`
}

// SyncOutput is the output for the sync tool.
type SyncOutput struct {
	Report *pipeline.Report `json:"report" jsonschema:"full run report: phase, fingerprint, selections, written files, findings"`
}

func handleSync() mcp.ToolHandlerFor[SyncInput, SyncOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SyncInput) (*mcp.CallToolResult, SyncOutput, error) {
		cfg := config.Sync{
			CatalogOrigin: config.ResolveOrigin(input.CatalogOrigin),
			ProjectRoot:   input.ProjectRoot,
			MatchPolicy:   input.MatchPolicy,
			Name:          input.Name,
			Purpose:       input.Purpose,
			// There is no interactive gate over MCP; apply is the consent.
			Yes:    input.Apply,
			DryRun: !input.Apply,
		}

		report, err := pipeline.New(cfg, nil).Run(ctx)
		if err != nil {
			// A completed run with findings is a result, not a tool failure;
			// the report carries the findings.
			var exitErr *output.ExitError
			if errors.As(err, &exitErr) && exitErr.Code == output.ExitFindings {
				return nil, SyncOutput{Report: report}, nil
			}
			return nil, SyncOutput{}, err
		}
		return nil, SyncOutput{Report: report}, nil
	}
}
