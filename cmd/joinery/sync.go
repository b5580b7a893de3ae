// Package main provides the entry point for the joinery CLI.
package main

import (
	"bufio"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gorewood/joinery/internal/config"
	"github.com/gorewood/joinery/internal/output"
	"github.com/gorewood/joinery/internal/pipeline"
)

// syncFlags holds the command-line flags for the sync command.
type syncFlags struct {
	catalogOrigin string
	projectRoot   string
	yes           bool
	dryRun        bool
	matchPolicy   string
	name          string
	purpose       string
	timeout       time.Duration
}

// newSyncCmd creates the sync command.
func newSyncCmd() *cobra.Command {
	flags := &syncFlags{}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Match catalog skills to the project and write its files",
		Long: `Run the full pipeline: open the catalog, fingerprint the project,
match skills against the detected stack, and write AGENTS.md,
skills/README.md, and a copy of every active skill.

Before writing, sync shows the plan and asks for confirmation; --yes
skips the prompt for scripts and CI. Nothing is written before the
confirmation, and an existing AGENTS.md whose structure joinery does
not recognize aborts the run untouched.

Exit codes: 0 verified, 1 failed, 2 verified with findings.

Examples:
  joinery sync                              # Sync the current directory
  joinery sync --yes                        # Skip the confirmation prompt
  joinery sync --dry-run                    # Preview without writing
  joinery sync --catalog-origin ./catalog   # Use a local catalog checkout
  joinery sync --match-policy all           # Require every trigger tag to match
  joinery sync --json --yes                 # Full run report as JSON`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.catalogOrigin, "catalog-origin", "", "Catalog directory or zip archive URL")
	cmd.Flags().StringVar(&flags.projectRoot, "project-root", ".", "Project directory to sync")
	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Show the plan without writing anything")
	cmd.Flags().StringVar(&flags.matchPolicy, "match-policy", config.MatchPolicyAny, "Trigger policy: any or all")
	cmd.Flags().StringVar(&flags.name, "name", "", "Override the detected project name")
	cmd.Flags().StringVar(&flags.purpose, "purpose", "", "Override the detected project purpose")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", config.DefaultFetchTimeout, "Remote catalog download timeout")

	return cmd
}

// runSync executes the sync command.
func runSync(cmd *cobra.Command, flags *syncFlags) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd))

	cfg := config.Sync{
		CatalogOrigin: config.ResolveOrigin(flags.catalogOrigin),
		ProjectRoot:   flags.projectRoot,
		Yes:           flags.yes,
		DryRun:        flags.dryRun,
		MatchPolicy:   flags.matchPolicy,
		Name:          flags.name,
		Purpose:       flags.purpose,
		FetchTimeout:  flags.timeout,
	}

	// JSON mode is non-interactive; without a terminal conversation the
	// prompt would just hang a script.
	prompted := false
	var confirm pipeline.ConfirmFunc
	if !printer.IsJSON() {
		confirm = func(report *pipeline.Report) (bool, error) {
			prompted = true
			return confirmSync(cmd, printer, report)
		}
	}

	report, err := pipeline.New(cfg, confirm).Run(cmd.Context())

	if printer.IsJSON() {
		if werr := printer.WriteJSON(report); werr != nil {
			return werr
		}
		return err
	}

	// The confirm prompt already showed the plan; don't repeat it.
	printSyncReport(printer, report, !prompted)
	if err != nil {
		// Findings are already on screen; everything else gets the
		// standard error line.
		if output.GetExitCode(err) != output.ExitFindings {
			printer.Error(err)
		}
		return err
	}
	return nil
}

// confirmSync shows the plan and asks before the first write.
func confirmSync(cmd *cobra.Command, printer *output.Printer, report *pipeline.Report) (bool, error) {
	printSelections(printer, report)
	printer.Println()
	printer.Print("  ? Write %d skill(s) and the orchestration files? [y/N] ", len(report.SelectedIDs()))

	reader := bufio.NewReader(cmd.InOrStdin())
	response, err := reader.ReadString('\n')
	if err != nil {
		// No input (EOF) means no consent.
		return false, nil
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// printSelections shows the fingerprint and the selection table.
func printSelections(printer *output.Printer, report *pipeline.Report) {
	fp := report.Fingerprint

	printer.Section("Project")
	printer.KeyValue("Name", valueOr(fp.Name, "(not detected)"))
	printer.KeyValue("Purpose", valueOr(fp.Purpose, "(not detected)"))
	printer.KeyValue("Stack", valueOr(strings.Join(fp.Tags, ", "), "(nothing detected)"))
	printer.KeyValue("Layout", string(fp.Layout))

	printer.Section("Skills")
	rows := make([][]string, 0, len(report.Selections))
	for _, sel := range report.Selections {
		status := "available"
		if sel.Selected {
			status = "active"
		}
		rows = append(rows, []string{sel.ID, status, sel.Reason})
	}
	printer.Table([]string{"Skill", "Status", "Reason"}, rows)
}

// printSyncReport renders the full human-mode run report.
func printSyncReport(printer *output.Printer, report *pipeline.Report, withSelections bool) {
	if withSelections {
		printSelections(printer, report)
	}

	if len(report.Written) > 0 {
		printer.Section("Written")
		for _, res := range report.Written {
			printer.KeyValue(res.Path, string(res.Action))
		}
	}

	if len(report.Findings) > 0 {
		printer.Section("Findings")
		rows := make([][]string, 0, len(report.Findings))
		for _, f := range report.Findings {
			rows = append(rows, []string{string(f.Severity), f.Name, f.Message})
		}
		printer.Table([]string{"Severity", "Check", "Message"}, rows)
	}

	printer.Println()
	switch report.Phase {
	case pipeline.PhaseVerified:
		if len(report.Findings) > 0 {
			printer.Print("Synced with %d finding(s).\n", len(report.Findings))
		} else {
			printer.Println("Synced and verified.")
		}
	case pipeline.PhaseAborted:
		printer.Println("Aborted. Nothing was written.")
	case pipeline.PhaseRendering:
		if report.DryRun {
			printer.Println("Dry run. Nothing was written.")
		}
	case pipeline.PhaseFailed:
		printer.Println("Sync failed.")
	}
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
