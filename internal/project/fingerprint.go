// Package project inspects a target project and produces its stack
// fingerprint. Inspection only reads: the dependency manifest, an existing
// orchestration file, and immediate directory names. It never executes
// anything found in the project.
package project

// Layout classifies the project's directory shape.
type Layout string

const (
	// LayoutSingleApp is one application at the project root.
	LayoutSingleApp Layout = "single-app"
	// LayoutMonorepo is a workspace container holding nested packages.
	LayoutMonorepo Layout = "monorepo"
)

// Fingerprint is the detected technology profile of a target project.
// Built once per run by Inspect; read-only afterward. Equal directory state
// yields an equal Fingerprint (tags sorted, no clocks, no randomness).
type Fingerprint struct {
	// Name is the project name from the manifest, or a flag override.
	Name string `json:"name"`
	// Purpose is the one-line description from the manifest.
	Purpose string `json:"purpose"`
	// Tags are the detected technology tags, sorted and lowercase.
	Tags []string `json:"tags,omitempty"`
	// Layout is the monorepo/single-app guess.
	Layout Layout `json:"layout"`
	// PriorActive holds entry IDs found in an existing orchestration file.
	PriorActive []string `json:"prior_active,omitempty"`
}

// Empty reports whether stack detection found nothing. Only always-include
// entries match an empty fingerprint.
func (f Fingerprint) Empty() bool {
	return len(f.Tags) == 0
}

// HasTag reports whether a tag was detected.
func (f Fingerprint) HasTag(tag string) bool {
	for _, t := range f.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
