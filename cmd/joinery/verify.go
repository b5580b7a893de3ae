package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/gorewood/joinery/internal/catalog"
	"github.com/gorewood/joinery/internal/config"
	"github.com/gorewood/joinery/internal/logger"
	"github.com/gorewood/joinery/internal/match"
	"github.com/gorewood/joinery/internal/orchestration"
	"github.com/gorewood/joinery/internal/output"
	"github.com/gorewood/joinery/internal/project"
	"github.com/gorewood/joinery/internal/verify"
)

// verifyFlags holds the command-line flags for the verify command.
type verifyFlags struct {
	catalogOrigin string
	projectRoot   string
	matchPolicy   string
	timeout       time.Duration
}

// verifyResult is the JSON shape for verify output.
type verifyResult struct {
	Origin   string           `json:"origin"`
	Errors   int              `json:"errors"`
	Warnings int              `json:"warnings"`
	Findings []verify.Finding `json:"findings,omitempty"`
}

// newVerifyCmd creates the verify command.
func newVerifyCmd() *cobra.Command {
	flags := &verifyFlags{}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a synced project against the catalog without writing",
		Long: `Re-run discovery and matching, then compare the project's AGENTS.md
against what the catalog says should be active. Verify never writes;
it reports drift as findings.

Exit codes: 0 clean, 1 the project was never synced or the catalog is
unreachable, 2 findings were reported.

Examples:
  joinery verify                            # Verify the current directory
  joinery verify --catalog-origin ./catalog # Verify against a local catalog
  joinery verify --json                     # Findings as JSON`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVerify(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.catalogOrigin, "catalog-origin", "", "Catalog directory or zip archive URL")
	cmd.Flags().StringVar(&flags.projectRoot, "project-root", ".", "Project directory to verify")
	cmd.Flags().StringVar(&flags.matchPolicy, "match-policy", config.MatchPolicyAny, "Trigger policy: any or all")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", config.DefaultFetchTimeout, "Remote catalog download timeout")

	return cmd
}

// runVerify executes the verify command.
func runVerify(cmd *cobra.Command, flags *verifyFlags) error {
	ctx := cmd.Context()
	log := logger.G(ctx)
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd))

	// A project that was never synced has nothing to verify against.
	orchestrationPath := filepath.Join(flags.projectRoot, orchestration.FileName)
	if _, err := os.Stat(orchestrationPath); err != nil {
		uerr := output.NewUserError(fmt.Sprintf("%s not found; run joinery sync first", orchestration.FileName))
		printer.Error(uerr)
		return uerr
	}

	policy, err := match.ParsePolicy(flags.matchPolicy)
	if err != nil {
		uerr := output.NewUserError(err.Error())
		printer.Error(uerr)
		return uerr
	}

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

	findings := make([]verify.Finding, 0)
	for _, warning := range src.Warnings() {
		findings = append(findings, verify.Finding{
			Name:     "Catalog",
			Severity: verify.SeverityWarning,
			Message:  warning,
		})
	}

	fp, err := project.Inspect(flags.projectRoot)
	if err != nil {
		uerr := output.NewUserError(fmt.Sprintf("inspecting project: %v", err))
		printer.Error(uerr)
		return uerr
	}

	entries := src.List()
	result := match.Select(fp, entries, policy)
	findings = append(findings, verify.Run(flags.projectRoot, result, entries)...)

	res := verifyResult{
		Origin:   origin,
		Errors:   verify.ErrorCount(findings),
		Warnings: len(findings) - verify.ErrorCount(findings),
		Findings: findings,
	}

	if printer.IsJSON() {
		if werr := printer.WriteJSON(res); werr != nil {
			return werr
		}
	} else {
		printVerifyResult(printer, res)
	}

	if len(findings) > 0 {
		return output.NewFindingsError(len(findings))
	}
	return nil
}

// printVerifyResult renders the human-mode verify output.
func printVerifyResult(printer *output.Printer, res verifyResult) {
	printer.Section("Verify")
	printer.KeyValue("Catalog", res.Origin)

	if len(res.Findings) == 0 {
		printer.Println()
		printer.Println("Verified. The project matches the catalog.")
		return
	}

	rows := make([][]string, 0, len(res.Findings))
	for _, f := range res.Findings {
		rows = append(rows, []string{string(f.Severity), f.Name, f.Message})
	}
	printer.Table([]string{"Severity", "Check", "Message"}, rows)

	for _, f := range res.Findings {
		if f.Hint != "" {
			printer.Println()
			printer.Print("  hint: %s\n", f.Hint)
			break
		}
	}

	printer.Println()
	printer.Print("%d error(s), %d warning(s).\n", res.Errors, res.Warnings)
}
