package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/gorewood/joinery/internal/orchestration"
)

// manifestName is the dependency manifest Inspect reads.
const manifestName = "package.json"

// manifest is the subset of package.json the inspector cares about.
// Workspaces stays raw because the field is either a list or an object
// with a "packages" list, depending on the package manager.
type manifest struct {
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	Workspaces      json.RawMessage   `json:"workspaces"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// Inspect reads the target project and produces its Fingerprint. A missing
// manifest is not an error: it yields an empty tag set. Only malformed JSON
// or unreadable files fail.
func Inspect(root string) (Fingerprint, error) {
	fp := Fingerprint{Layout: LayoutSingleApp}

	m, found, err := readManifest(root)
	if err != nil {
		return Fingerprint{}, err
	}
	if found {
		fp.Name = m.Name
		fp.Purpose = m.Description
		fp.Tags = detectTags(mergeDeps(m.Dependencies, m.DevDependencies))
		fp.Layout = detectLayout(root, workspacePatterns(m.Workspaces))
	}

	prior, err := readPriorActive(root)
	if err != nil {
		return Fingerprint{}, err
	}
	fp.PriorActive = prior

	return fp, nil
}

// readManifest parses package.json when present.
func readManifest(root string) (manifest, bool, error) {
	raw, err := os.ReadFile(filepath.Join(root, manifestName))
	if err != nil {
		if os.IsNotExist(err) {
			return manifest{}, false, nil
		}
		return manifest{}, false, fmt.Errorf("reading %s: %w", manifestName, err)
	}

	var m manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return manifest{}, false, fmt.Errorf("parsing %s: %w", manifestName, err)
	}
	return m, true, nil
}

// mergeDeps flattens dependencies and devDependencies into one mapping.
func mergeDeps(deps, devDeps map[string]string) map[string]string {
	merged := make(map[string]string, len(deps)+len(devDeps))
	for name, version := range deps {
		merged[name] = version
	}
	for name, version := range devDeps {
		merged[name] = version
	}
	return merged
}

// workspacePatterns decodes the workspaces field: either a plain list or
// the yarn-classic {"packages": [...]} object. Anything else is ignored.
func workspacePatterns(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}

	var obj struct {
		Packages []string `json:"packages"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Packages
	}
	return nil
}

// detectLayout classifies the project as monorepo when a workspace glob
// matches a nested package, or when a conventional packages/ or apps/
// container holds one.
func detectLayout(root string, workspaces []string) Layout {
	candidates := nestedPackages(root)
	if len(candidates) == 0 {
		return LayoutSingleApp
	}

	for _, pattern := range workspaces {
		for _, dir := range candidates {
			if ok, err := doublestar.Match(pattern, dir); err == nil && ok {
				return LayoutMonorepo
			}
		}
	}

	for _, dir := range candidates {
		if strings.HasPrefix(dir, "packages/") || strings.HasPrefix(dir, "apps/") {
			return LayoutMonorepo
		}
	}
	return LayoutSingleApp
}

// nestedPackages returns slash-relative directories holding a package.json,
// up to two levels below the root. Depth is capped: layout is a guess about
// shape, not a full workspace resolution.
func nestedPackages(root string) []string {
	var dirs []string
	for _, sub := range subdirNames(root) {
		if hasManifest(filepath.Join(root, sub)) {
			dirs = append(dirs, sub)
		}
		for _, nested := range subdirNames(filepath.Join(root, sub)) {
			if hasManifest(filepath.Join(root, sub, nested)) {
				dirs = append(dirs, sub+"/"+nested)
			}
		}
	}
	return dirs
}

// subdirNames lists immediate subdirectory names, skipping dot dirs and
// node_modules.
func subdirNames(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var names []string
	for _, de := range entries {
		if !de.IsDir() {
			continue
		}
		name := de.Name()
		if strings.HasPrefix(name, ".") || name == "node_modules" {
			continue
		}
		names = append(names, name)
	}
	return names
}

func hasManifest(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, manifestName))
	return err == nil && info.Mode().IsRegular()
}

// readPriorActive extracts prior active entry IDs from an existing
// orchestration file. The parse is lenient: unrecognized structure yields
// no IDs, never an error. Only read failures other than absence fail.
func readPriorActive(root string) ([]string, error) {
	raw, err := os.ReadFile(filepath.Join(root, orchestration.FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", orchestration.FileName, err)
	}
	return orchestration.ActiveIDs(raw), nil
}
