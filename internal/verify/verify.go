// Package verify checks a synced project against the catalog: every
// selected entry has its table row, every referenced file exists, and no
// stale rows point at entries the catalog no longer has. Verification
// reports findings instead of failing; the caller decides what to do.
package verify

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gorewood/joinery/internal/catalog"
	"github.com/gorewood/joinery/internal/match"
	"github.com/gorewood/joinery/internal/orchestration"
)

// Severity grades a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is one verification result.
type Finding struct {
	Name     string   `json:"name"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Hint     string   `json:"hint,omitempty"`
}

// Check names, one per class of finding.
const (
	checkOrchestration = "Orchestration file"
	checkActiveTable   = "Active skills table"
	checkSkillFiles    = "Skill files"
)

// Run verifies the project at projectRoot against the match result and
// catalog entries. It never returns an error: problems come back as
// findings so a run can finish and report them all.
func Run(projectRoot string, result match.Result, entries []catalog.Entry) []Finding {
	raw, err := os.ReadFile(filepath.Join(projectRoot, orchestration.FileName))
	if err != nil {
		return []Finding{{
			Name:     checkOrchestration,
			Severity: SeverityError,
			Message:  orchestration.FileName + " is missing",
			Hint:     "run joinery sync to create it",
		}}
	}

	rows := orchestration.ActiveRows(raw)
	rowIDs := make(map[string]bool, len(rows))
	for _, row := range rows {
		rowIDs[row.ID] = true
	}
	known := make(map[string]bool, len(entries))
	for _, entry := range entries {
		known[entry.ID] = true
	}

	var findings []Finding

	// Every selected entry must appear in the table.
	for _, id := range result.SelectedIDs() {
		if !rowIDs[id] {
			findings = append(findings, Finding{
				Name:     checkActiveTable,
				Severity: SeverityError,
				Message:  fmt.Sprintf("selected entry %s has no row in %s", id, orchestration.FileName),
				Hint:     "rerun joinery sync",
			})
		}
	}

	// Every referenced file must exist, inside the project.
	for _, row := range rows {
		if !filepath.IsLocal(row.Path) {
			findings = append(findings, Finding{
				Name:     checkSkillFiles,
				Severity: SeverityError,
				Message:  fmt.Sprintf("row %s references a path outside the project: %s", row.ID, row.Path),
			})
			continue
		}
		if _, err := os.Stat(filepath.Join(projectRoot, filepath.FromSlash(row.Path))); err != nil {
			findings = append(findings, Finding{
				Name:     checkSkillFiles,
				Severity: SeverityError,
				Message:  fmt.Sprintf("referenced file %s does not exist", row.Path),
				Hint:     "rerun joinery sync to copy skill files",
			})
		}
	}

	// Rows must name entries the catalog still has.
	for _, row := range rows {
		if !known[row.ID] {
			findings = append(findings, Finding{
				Name:     checkActiveTable,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("row %s does not match any catalog entry", row.ID),
				Hint:     "remove the row or restore the catalog entry",
			})
		}
	}

	return findings
}

// ErrorCount returns how many findings are errors.
func ErrorCount(findings []Finding) int {
	n := 0
	for _, f := range findings {
		if f.Severity == SeverityError {
			n++
		}
	}
	return n
}
