package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gorewood/joinery/internal/catalog"
	"github.com/gorewood/joinery/internal/config"
	"github.com/gorewood/joinery/internal/logger"
	"github.com/gorewood/joinery/internal/output"
)

// listCatalogFlags holds the command-line flags for the list-catalog command.
type listCatalogFlags struct {
	catalogOrigin string
	timeout       time.Duration
}

// catalogEntryRow is one entry in the list-catalog JSON output.
type catalogEntryRow struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Trigger     string `json:"trigger,omitempty"`
	Tier        string `json:"tier"`
	Always      bool   `json:"always,omitempty"`
}

// listCatalogResult is the JSON shape for list-catalog output.
type listCatalogResult struct {
	Origin   string            `json:"origin"`
	Count    int               `json:"count"`
	Entries  []catalogEntryRow `json:"entries"`
	Warnings []string          `json:"warnings,omitempty"`
}

// newListCatalogCmd creates the list-catalog command.
func newListCatalogCmd() *cobra.Command {
	flags := &listCatalogFlags{}

	cmd := &cobra.Command{
		Use:   "list-catalog",
		Short: "List every skill the catalog offers",
		Long: `Open the catalog and list its entries without touching any project.
Malformed entries are skipped and reported as warnings.

Examples:
  joinery list-catalog                            # List the default catalog
  joinery list-catalog --catalog-origin ./catalog # List a local checkout
  joinery list-catalog --json                     # Entries as JSON`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runListCatalog(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.catalogOrigin, "catalog-origin", "", "Catalog directory or zip archive URL")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", config.DefaultFetchTimeout, "Remote catalog download timeout")

	return cmd
}

// runListCatalog executes the list-catalog command.
func runListCatalog(cmd *cobra.Command, flags *listCatalogFlags) error {
	ctx := cmd.Context()
	log := logger.G(ctx)
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd))

	origin := config.ResolveOrigin(flags.catalogOrigin)
	src, err := catalog.Open(ctx, origin, flags.timeout)
	if err != nil {
		terr := output.NewTransportError(fmt.Sprintf("opening catalog: %v", err), err)
		printer.Error(terr)
		return terr
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			log.WithError(cerr).Warn("closing catalog source")
		}
	}()

	entries := src.List()
	rows := make([]catalogEntryRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, catalogEntryRow{
			ID:          entry.ID,
			Description: entry.Description,
			Trigger:     entry.Trigger,
			Tier:        string(entry.Tier),
			Always:      entry.Always,
		})
	}

	res := listCatalogResult{
		Origin:   origin,
		Count:    len(rows),
		Entries:  rows,
		Warnings: src.Warnings(),
	}

	if printer.IsJSON() {
		return printer.WriteJSON(res)
	}

	printer.Section("Catalog")
	printer.KeyValue("Origin", res.Origin)
	printer.KeyValue("Entries", fmt.Sprintf("%d", res.Count))

	tableRows := make([][]string, 0, len(rows))
	for _, row := range rows {
		trigger := row.Trigger
		if row.Always {
			trigger = "always"
		}
		tableRows = append(tableRows, []string{row.ID, row.Tier, trigger})
	}
	printer.Table([]string{"ID", "Tier", "Trigger"}, tableRows)

	for _, warning := range res.Warnings {
		printer.Warn("%s", warning)
	}
	return nil
}
