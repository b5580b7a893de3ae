// Package match selects catalog entries for a project's stack fingerprint.
// Selection is a pure set-membership test against declared trigger tags:
// no fuzzy matching, no ranking, no inference.
package match

import (
	"fmt"
	"sort"

	"github.com/gorewood/joinery/internal/catalog"
	"github.com/gorewood/joinery/internal/project"
)

// Policy controls how an entry's declared tags are compared against the
// fingerprint.
type Policy string

const (
	// PolicyAny selects an entry when any declared tag is present.
	PolicyAny Policy = "any"
	// PolicyAll selects an entry only when every declared tag is present.
	PolicyAll Policy = "all"
)

// ParsePolicy validates a --match-policy flag value.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyAny, PolicyAll:
		return Policy(s), nil
	case "":
		return PolicyAny, nil
	default:
		return "", fmt.Errorf("unknown match policy %q (want %q or %q)", s, PolicyAny, PolicyAll)
	}
}

// Selection is one entry's outcome: the flag plus the entry's free-text
// trigger justification.
type Selection struct {
	ID       string `json:"id"`
	Selected bool   `json:"selected"`
	Reason   string `json:"reason"`
}

// Result holds every entry's selection, ordered by entry ID. Equal inputs
// produce equal Results.
type Result struct {
	Selections []Selection `json:"selections"`
	Warnings   []string    `json:"warnings,omitempty"`
}

// SelectedIDs returns the IDs of selected entries, in order.
func (r Result) SelectedIDs() []string {
	var ids []string
	for _, sel := range r.Selections {
		if sel.Selected {
			ids = append(ids, sel.ID)
		}
	}
	return ids
}

// IsSelected reports one entry's flag.
func (r Result) IsSelected(id string) bool {
	for _, sel := range r.Selections {
		if sel.ID == id {
			return sel.Selected
		}
	}
	return false
}

// Select maps the fingerprint over the catalog. Always-include entries are
// selected regardless of tags; an empty fingerprint selects only those and
// records a warning that stack detection found nothing.
func Select(fp project.Fingerprint, entries []catalog.Entry, policy Policy) Result {
	sorted := make([]catalog.Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	result := Result{Selections: make([]Selection, 0, len(sorted))}
	if fp.Empty() {
		result.Warnings = append(result.Warnings,
			"stack detection found nothing; only always-include entries are selected")
	}

	for _, entry := range sorted {
		result.Selections = append(result.Selections, Selection{
			ID:       entry.ID,
			Selected: selects(fp, entry, policy),
			Reason:   reason(entry),
		})
	}
	return result
}

// selects applies the policy to one entry. Entries that declare no tags can
// only be selected via Always; under PolicyAll an empty tag list must not
// match vacuously.
func selects(fp project.Fingerprint, entry catalog.Entry, policy Policy) bool {
	if entry.Always {
		return true
	}
	if len(entry.Triggers) == 0 {
		return false
	}

	switch policy {
	case PolicyAll:
		for _, tag := range entry.Triggers {
			if !fp.HasTag(tag) {
				return false
			}
		}
		return true
	default:
		for _, tag := range entry.Triggers {
			if fp.HasTag(tag) {
				return true
			}
		}
		return false
	}
}

func reason(entry catalog.Entry) string {
	if entry.Trigger != "" {
		return entry.Trigger
	}
	if entry.Always {
		return "Always included"
	}
	return entry.Description
}
