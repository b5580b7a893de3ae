// Package main provides the entry point for the joinery CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/gorewood/joinery/internal/config"
	"github.com/gorewood/joinery/internal/envfile"
	"github.com/gorewood/joinery/internal/logger"
	"github.com/gorewood/joinery/internal/output"
)

// Build info set via ldflags at build time by goreleaser.
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123 -X main.date=2024-01-01"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// isJSONMode reads the --json persistent flag from the command hierarchy.
// Commands read it per invocation, so tests can run them without shared
// mutable state.
func isJSONMode(cmd *cobra.Command) bool {
	flag := cmd.Flags().Lookup("json")
	if flag == nil {
		// Walk up to root to find the persistent flag
		flag = cmd.Root().PersistentFlags().Lookup("json")
	}
	return flag != nil && flag.Value.String() == "true"
}

// useColor resolves the --color flag against TTY detection.
func useColor(cmd *cobra.Command) bool {
	mode := "auto"
	if flag := cmd.Root().PersistentFlags().Lookup("color"); flag != nil {
		mode = flag.Value.String()
	}
	return output.ResolveColorMode(mode, output.IsTTY(cmd.OutOrStdout()))
}

// buildVersion returns the full version string including commit and date.
func buildVersion() string {
	if commit == "none" && date == "unknown" {
		return version
	}
	shortCommit := commit
	if len(commit) > 7 {
		shortCommit = commit[:7]
	}
	return fmt.Sprintf("%s (%s, %s)", version, shortCommit, date)
}

func main() {
	code := run()
	os.Exit(code)
}

func run() int {
	cmd := newRootCmd()
	err := fang.Execute(context.Background(), cmd, fang.WithVersion(buildVersion()))
	return output.GetExitCode(err)
}

// newRootCmd creates the root command for the joinery CLI.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "joinery",
		Short: "Keep a project's agent skills in step with a shared catalog",
		Long: `Joinery synchronizes a project with a shared skill catalog.

It fingerprints the project from its dependency manifest, matches catalog
skills against the detected stack, and writes the files agents read:
  - AGENTS.md with the table of active skills
  - skills/README.md listing the whole catalog
  - a byte-identical copy of every active skill under skills/

Reruns are safe: the Project-Specific Rules section survives verbatim,
unchanged files are left alone, and a file joinery does not recognize is
never overwritten.

All commands support --json for structured output.`,
		Version:       buildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// If --json flag is set but no subcommand, output JSON error
			if isJSONMode(cmd) {
				printer := output.NewPrinter(cmd.OutOrStdout(), true, false)
				err := output.NewUserError("no command specified. Run 'joinery --help' for usage")
				printer.Error(err)
				return err
			}
			// Otherwise show help
			return cmd.Help()
		},
	}

	// Env files cover settings that are awkward to export everywhere,
	// CATALOG_ORIGIN mainly. Real environment variables always win.
	cmd.PersistentPreRunE = func(c *cobra.Command, _ []string) error {
		loadEnvFiles()
		if level, err := c.Root().PersistentFlags().GetString("log-level"); err == nil && level != "" {
			if lerr := logger.SetLogLevel(level); lerr != nil {
				return output.NewUserError(fmt.Sprintf("invalid log level %q", level))
			}
		}
		return nil
	}

	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().String("color", "auto", "Color output: auto, always, or never")
	cmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, or error")

	// Configure lipgloss for TTY detection
	lipgloss.SetHasDarkBackground(true)

	addCommandGroups(cmd)
	addCommands(cmd)

	return cmd
}

// loadEnvFiles loads env files in priority order. First match for each
// variable wins; environment variables already set always take precedence.
//
// Resolution order:
//  1. $CWD/.env.local   (per-project override, gitignored)
//  2. $CWD/.env         (per-project)
//  3. ~/.config/joinery/env (global fallback — set once, works everywhere)
func loadEnvFiles() {
	_ = envfile.Load(".env.local")
	_ = envfile.Load(".env")

	if dir := config.Dir(); dir != "" {
		_ = envfile.Load(filepath.Join(dir, "env"))
	}
}

// addCommandGroups defines the command groups for help output.
func addCommandGroups(cmd *cobra.Command) {
	cmd.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "catalog", Title: "Catalog Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "agent", Title: "Agent Commands:"})
}

// addCommands adds all subcommands with their group assignments.
func addCommands(cmd *cobra.Command) {
	// Core commands: the pipeline and its re-checks
	addGroupedCommand(cmd, newSyncCmd(), "core")
	addGroupedCommand(cmd, newVerifyCmd(), "core")

	// Catalog commands: read-only views of catalog and project
	addGroupedCommand(cmd, newListCatalogCmd(), "catalog")
	addGroupedCommand(cmd, newInspectCmd(), "catalog")

	// Agent commands: MCP surface
	addGroupedCommand(cmd, newServeCmd(), "agent")
}

// addGroupedCommand adds a subcommand with a group assignment.
func addGroupedCommand(parent *cobra.Command, child *cobra.Command, groupID string) {
	child.GroupID = groupID
	parent.AddCommand(child)
}
