// Package pipeline runs one synchronization end to end: open the catalog,
// fingerprint the project, match entries, confirm, render, write, verify.
// Phases are strictly ordered and single-threaded. Everything before the
// confirmation point is read-only, and the conflict check runs before the
// first write, so an aborted or failed run leaves the project as it was.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorewood/joinery/internal/catalog"
	"github.com/gorewood/joinery/internal/config"
	"github.com/gorewood/joinery/internal/logger"
	"github.com/gorewood/joinery/internal/match"
	"github.com/gorewood/joinery/internal/orchestration"
	"github.com/gorewood/joinery/internal/output"
	"github.com/gorewood/joinery/internal/project"
	"github.com/gorewood/joinery/internal/render"
	"github.com/gorewood/joinery/internal/verify"
)

// Phase names a pipeline state. Phases appear verbatim in reports and logs.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseDiscovering Phase = "discovering"
	PhaseMatching    Phase = "matching"
	PhaseConfirming  Phase = "confirming"
	PhaseRendering   Phase = "rendering"
	PhaseWriting     Phase = "writing"
	PhaseVerified    Phase = "verified"
	PhaseAborted     Phase = "aborted"
	PhaseFailed      Phase = "failed"
)

// Report is the outcome of one run. Every run ends with one, whatever
// phase it reached; under --json it is the command's entire output.
type Report struct {
	Phase       Phase                  `json:"phase"`
	Origin      string                 `json:"origin"`
	DryRun      bool                   `json:"dry_run,omitempty"`
	Fingerprint project.Fingerprint    `json:"fingerprint"`
	Selections  []match.Selection      `json:"selections,omitempty"`
	Written     []orchestration.Result `json:"written,omitempty"`
	Findings    []verify.Finding       `json:"findings,omitempty"`
	Error       string                 `json:"error,omitempty"`
}

// SelectedIDs returns the IDs the run selected, in table order.
func (r *Report) SelectedIDs() []string {
	return match.Result{Selections: r.Selections}.SelectedIDs()
}

// ConfirmFunc decides whether the run may start writing. It sees the
// report as of the confirmation point: fingerprint and selections are
// populated, nothing has been written yet.
type ConfirmFunc func(report *Report) (bool, error)

// Runner executes the sync pipeline.
type Runner struct {
	cfg     config.Sync
	confirm ConfirmFunc
}

// New creates a Runner. confirm may be nil when the caller has no
// interactive gate; --yes and dry runs never consult it.
func New(cfg config.Sync, confirm ConfirmFunc) *Runner {
	return &Runner{cfg: cfg.WithDefaults(), confirm: confirm}
}

// Run executes one sync. The returned report is non-nil even on failure;
// the error, when set, is an output.ExitError carrying the exit code.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	cfg := r.cfg
	log := logger.G(ctx)
	report := &Report{Phase: PhaseIdle, Origin: cfg.CatalogOrigin, DryRun: cfg.DryRun}

	policy, err := match.ParsePolicy(cfg.MatchPolicy)
	if err != nil {
		return fail(report, output.NewUserError(err.Error()))
	}

	// Discovering: open the catalog and fingerprint the project. Read-only.
	report.Phase = PhaseDiscovering
	log.WithField("origin", cfg.CatalogOrigin).Debug("opening catalog")
	src, err := catalog.Open(ctx, cfg.CatalogOrigin, cfg.FetchTimeout)
	if err != nil {
		return fail(report, output.NewTransportError(fmt.Sprintf("opening catalog: %v", err), err))
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			log.WithError(cerr).Warn("closing catalog source")
		}
	}()
	for _, w := range src.Warnings() {
		report.addWarning("Catalog", w)
	}

	fp, err := project.Inspect(cfg.ProjectRoot)
	if err != nil {
		return fail(report, output.NewUserError(fmt.Sprintf("inspecting project: %v", err)))
	}
	if cfg.Name != "" {
		fp.Name = cfg.Name
	}
	if cfg.Purpose != "" {
		fp.Purpose = cfg.Purpose
	}
	report.Fingerprint = fp

	// Matching is pure: same fingerprint and catalog, same result.
	report.Phase = PhaseMatching
	entries := src.List()
	result := match.Select(fp, entries, policy)
	report.Selections = result.Selections
	for _, w := range result.Warnings {
		report.addWarning("Stack detection", w)
	}
	log.WithField("selected", len(result.SelectedIDs())).
		WithField("total", len(entries)).Debug("matched catalog entries")

	// Confirming is the only suspension point. Declining ends the run
	// with nothing touched.
	report.Phase = PhaseConfirming
	if !cfg.Yes && !cfg.DryRun && r.confirm != nil {
		ok, err := r.confirm(report)
		if err != nil {
			return fail(report, err)
		}
		if !ok {
			report.Phase = PhaseAborted
			return report, nil
		}
	}

	// Rendering: fill both templates and stage the documents to copy.
	report.Phase = PhaseRendering
	values := render.BuildValues(fp, result, entries)
	orchRendered, err := r.renderSurface(src, render.KindOrchestration, values, report)
	if err != nil {
		return fail(report, err)
	}
	listRendered, err := r.renderSurface(src, render.KindListing, values, report)
	if err != nil {
		return fail(report, err)
	}

	if cfg.DryRun {
		return report, nil
	}

	type entryDocs struct {
		id   string
		docs []catalog.Document
	}
	var copies []entryDocs
	for _, id := range result.SelectedIDs() {
		docs, err := src.FetchEntry(id)
		if errors.Is(err, catalog.ErrEntryNotFound) {
			report.addWarning("Catalog", fmt.Sprintf("entry %s is gone from the catalog; skipped", id))
			continue
		}
		if err != nil {
			return fail(report, output.NewTransportError(fmt.Sprintf("fetching entry %s: %v", id, err), err))
		}
		copies = append(copies, entryDocs{id: id, docs: docs})
	}

	// Writing: the merge (and its conflict check) comes before any write,
	// and the orchestration file itself is written last.
	report.Phase = PhaseWriting
	writer := orchestration.NewWriter(cfg.ProjectRoot)
	merged, err := writer.MergeOrchestration([]byte(orchRendered))
	if err != nil {
		if errors.Is(err, orchestration.ErrConflict) {
			return fail(report, output.NewConflictError(err.Error()))
		}
		return fail(report, err)
	}

	for _, ed := range copies {
		results, err := writer.WriteEntryDocs(ed.id, ed.docs)
		report.Written = append(report.Written, results...)
		if err != nil {
			return fail(report, err)
		}
	}
	res, err := writer.Write(orchestration.ListingPath, []byte(listRendered))
	if err != nil {
		return fail(report, err)
	}
	report.Written = append(report.Written, res)
	res, err = writer.Write(orchestration.FileName, merged)
	if err != nil {
		return fail(report, err)
	}
	report.Written = append(report.Written, res)
	log.WithField("files", len(report.Written)).Debug("wrote project files")

	// Verified. Findings are reported, never fatal; the exit code still
	// distinguishes a clean run from a noisy one.
	report.Phase = PhaseVerified
	report.Findings = append(report.Findings, verify.Run(cfg.ProjectRoot, result, entries)...)
	if len(report.Findings) > 0 {
		return report, output.NewFindingsError(len(report.Findings))
	}
	return report, nil
}

// renderSurface loads and renders one template kind, folding render
// warnings into the report.
func (r *Runner) renderSurface(src catalog.Source, kind render.Kind, values render.Values, report *Report) (string, error) {
	tmpl, err := render.LoadTemplate(src, kind)
	if err != nil {
		// A template that exists but does not validate means the origin
		// shipped broken content.
		return "", output.NewTransportError(err.Error(), err)
	}
	rendered, warnings := render.Render(tmpl, values)
	for _, w := range warnings {
		report.addWarning("Template", w)
	}
	return rendered, nil
}

func (r *Report) addWarning(name, message string) {
	r.Findings = append(r.Findings, verify.Finding{
		Name:     name,
		Severity: verify.SeverityWarning,
		Message:  message,
	})
}

func fail(report *Report, err error) (*Report, error) {
	report.Phase = PhaseFailed
	report.Error = err.Error()
	return report, err
}
