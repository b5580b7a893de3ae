package orchestration

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gorewood/joinery/internal/catalog"
)

// ErrConflict marks a previous orchestration file whose structure the
// merger does not recognize. Nothing is written when it is returned; the
// user resolves the file by hand.
var ErrConflict = errors.New("existing file structure not recognized")

// Action says what Write did to a path.
type Action string

const (
	ActionCreated   Action = "created"
	ActionUpdated   Action = "updated"
	ActionUnchanged Action = "unchanged"
)

// Result reports one written file, path relative to the project root in
// slash form.
type Result struct {
	Path   string `json:"path"`
	Action Action `json:"action"`
}

// Writer performs all filesystem mutation in the target project. Every
// write is atomic (temp file + rename) so concurrent readers never observe
// a half-written file.
type Writer struct {
	projectRoot string
}

// NewWriter creates a Writer rooted at the target project.
func NewWriter(projectRoot string) *Writer {
	return &Writer{projectRoot: projectRoot}
}

// MergeOrchestration computes the final orchestration file content from the
// rendered document and whatever is on disk. Read-only: callers get the
// merged bytes before anything is written, so a conflict aborts the run
// with the project untouched.
//
// Merge policy: a previous file with recognizable anchors contributes its
// Project-Specific Rules body verbatim; a previous file without them is a
// conflict; no previous file passes the rendered document through.
func (w *Writer) MergeOrchestration(rendered []byte) ([]byte, error) {
	previous, err := os.ReadFile(filepath.Join(w.projectRoot, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return rendered, nil
		}
		return nil, fmt.Errorf("reading %s: %w", FileName, err)
	}

	if !HasAnchors(previous) {
		return nil, fmt.Errorf("%s: %w", FileName, ErrConflict)
	}

	body, ok := RulesBody(previous)
	if !ok {
		return nil, fmt.Errorf("%s: %w", FileName, ErrConflict)
	}
	return spliceRules(rendered, body), nil
}

// Write atomically writes content to a path relative to the project root
// (slash form). Unchanged files are left alone so reruns cause no spurious
// mtime churn.
func (w *Writer) Write(relPath string, content []byte) (Result, error) {
	target := filepath.Join(w.projectRoot, filepath.FromSlash(relPath))

	existing, err := os.ReadFile(target)
	switch {
	case err == nil && bytes.Equal(existing, content):
		return Result{Path: relPath, Action: ActionUnchanged}, nil
	case err == nil:
		if err := atomicWrite(target, content); err != nil {
			return Result{}, fmt.Errorf("writing %s: %w", relPath, err)
		}
		return Result{Path: relPath, Action: ActionUpdated}, nil
	case os.IsNotExist(err):
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return Result{}, fmt.Errorf("creating directory for %s: %w", relPath, err)
		}
		if err := atomicWrite(target, content); err != nil {
			return Result{}, fmt.Errorf("writing %s: %w", relPath, err)
		}
		return Result{Path: relPath, Action: ActionCreated}, nil
	default:
		return Result{}, fmt.Errorf("reading %s: %w", relPath, err)
	}
}

// WriteEntryDocs copies one entry's documents byte-identical under
// skills/<id>/.
func (w *Writer) WriteEntryDocs(id string, docs []catalog.Document) ([]Result, error) {
	results := make([]Result, 0, len(docs))
	for _, doc := range docs {
		res, err := w.Write(SkillsDir+"/"+id+"/"+doc.Path, doc.Content)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// atomicWrite writes data to path using write-to-temp-then-rename.
// The temp file is created in the same directory as path.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".joinery-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	// CreateTemp defaults to 0600; these are shared project files
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
