package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gorewood/joinery/internal/output"
	"github.com/gorewood/joinery/internal/project"
)

// inspectFlags holds the command-line flags for the inspect command.
type inspectFlags struct {
	projectRoot string
}

// newInspectCmd creates the inspect command.
func newInspectCmd() *cobra.Command {
	flags := &inspectFlags{}

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the project fingerprint used for matching",
		Long: `Read the project's manifest and layout and print the fingerprint
joinery matches skills against: name, purpose, stack tags, and layout.
Inspect never contacts the catalog and never writes.

Examples:
  joinery inspect                       # Fingerprint the current directory
  joinery inspect --project-root ./app  # Fingerprint another directory
  joinery inspect --json                # Fingerprint as JSON`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInspect(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.projectRoot, "project-root", ".", "Project directory to inspect")

	return cmd
}

// runInspect executes the inspect command.
func runInspect(cmd *cobra.Command, flags *inspectFlags) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd))

	fp, err := project.Inspect(flags.projectRoot)
	if err != nil {
		uerr := output.NewUserError(fmt.Sprintf("inspecting project: %v", err))
		printer.Error(uerr)
		return uerr
	}

	if printer.IsJSON() {
		return printer.WriteJSON(fp)
	}

	printer.Section("Project")
	printer.KeyValue("Name", valueOr(fp.Name, "(not detected)"))
	printer.KeyValue("Purpose", valueOr(fp.Purpose, "(not detected)"))
	printer.KeyValue("Stack", valueOr(strings.Join(fp.Tags, ", "), "(nothing detected)"))
	printer.KeyValue("Layout", string(fp.Layout))

	if len(fp.PriorActive) > 0 {
		printer.Section("Previously Active")
		for _, id := range fp.PriorActive {
			printer.Print("  - %s\n", id)
		}
	}
	return nil
}
