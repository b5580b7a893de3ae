// Package output provides structured output handling for the joinery CLI.
//
// This package handles both human-readable and JSON output formats, supporting
// the agent-friendly design principle that all commands should work well for
// both human users and automated agents.
//
// # Printer
//
// The Printer is the primary interface for command output. It automatically
// handles format switching based on the --json flag and TTY detection:
//
//	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), output.IsTTY(cmd.OutOrStdout()))
//
//	// For success output
//	printer.Success(map[string]any{"message": "Sync verified", "active": len(report.Active)})
//
//	// For error output
//	printer.Error(err)
//
//	// For raw output
//	printer.Println("Some text")
//	printer.Print("Formatted: %s\n", value)
//
// # JSON Mode
//
// When JSON mode is enabled (via --json flag), all output is structured:
//
//	// Success: {"message": "...", "active": N, ...}
//	// Error: {"error": "message", "code": N, "kind": "..."}
//
// # Styling
//
// For human-readable output, the package provides lipgloss-based styling
// that automatically disables when output is piped:
//
//	printer.styles.Error   // Red, bold
//	printer.styles.Success // Green
//	printer.styles.Warning // Yellow
//	printer.styles.Bold    // Bold
//	printer.styles.Dim     // Gray
//
// # Exit Codes
//
// Every command exits with one of three codes:
//
//	output.ExitSuccess  // 0: run completed, verification passed
//	output.ExitFailure  // 1: run failed (user, transport, or conflict)
//	output.ExitFindings // 2: run completed, verification raised findings
//
// # Error Types
//
// Use the error constructors to create properly-coded errors:
//
//	output.NewUserError("unknown skill: nextjs-rsc")
//	output.NewTransportError("fetching catalog", err)
//	output.NewConflictError("AGENTS.md: managed table heading not found")
//	output.NewFindingsError(2)
//
// These errors carry exit codes and failure kinds that are used for both
// JSON error output and process exit codes.
package output
