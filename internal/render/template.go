// Package render turns a matched catalog into the files the writer
// persists: the orchestration file and the catalog listing. Templates are
// markdown with YAML frontmatter and a closed set of {TOKEN} placeholders;
// rendering validates the structural anchors and substitutes tokens.
package render

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gorewood/joinery/internal/orchestration"
)

// SchemaVersion is the frontmatter schema every template must declare.
const SchemaVersion = "joinery.template/v1"

// Kind selects which output surface a template produces.
type Kind string

const (
	// KindOrchestration renders the AGENTS.md orchestration file.
	KindOrchestration Kind = "orchestration"
	// KindListing renders the skills/README.md catalog listing.
	KindListing Kind = "listing"
)

// Template is a parsed template: frontmatter metadata plus the body that
// gets rendered. The frontmatter is stripped from the output.
type Template struct {
	Schema string `yaml:"schema"`
	Name   string `yaml:"name,omitempty"`

	// Body is the template content after the frontmatter.
	Body string `yaml:"-"`

	// Source records where the template came from: "catalog" or "built-in".
	Source string `yaml:"-"`
}

// Parse parses raw template bytes and validates them for the given kind.
// A wrong schema or a missing structural anchor is an error: rendering
// from a drifted template would produce files the parser cannot read back.
func Parse(raw []byte, kind Kind) (*Template, error) {
	frontmatter, body := splitFrontmatter(string(raw))
	if frontmatter == "" {
		return nil, fmt.Errorf("template has no frontmatter")
	}

	var tmpl Template
	if err := yaml.Unmarshal([]byte(frontmatter), &tmpl); err != nil {
		return nil, fmt.Errorf("invalid template frontmatter: %w", err)
	}
	if tmpl.Schema != SchemaVersion {
		return nil, fmt.Errorf("unsupported template schema %q (want %s)", tmpl.Schema, SchemaVersion)
	}

	tmpl.Body = strings.TrimSpace(body) + "\n"
	if err := checkAnchors(tmpl.Body, kind); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// splitFrontmatter separates YAML frontmatter from the template body.
// Frontmatter is delimited by --- at the start and end.
func splitFrontmatter(raw string) (frontmatter, body string) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "---") {
		return "", raw
	}

	rest := raw[3:] // skip opening ---
	before, after, ok := strings.Cut(rest, "\n---")
	if !ok {
		return "", raw
	}

	return strings.TrimSpace(before), strings.TrimSpace(after)
}

// requiredAnchors lists the lines a template body must carry so the
// parser and merger can find their way around the rendered file.
func requiredAnchors(kind Kind) []string {
	if kind == KindListing {
		return []string{
			orchestration.CatalogHeading,
			orchestration.CatalogTableHeader,
		}
	}
	return []string{
		orchestration.ActiveSkillsHeading,
		orchestration.SkillTableHeader,
		orchestration.RulesHeading,
	}
}

func checkAnchors(body string, kind Kind) error {
	for _, anchor := range requiredAnchors(kind) {
		if !hasLine(body, anchor) {
			return fmt.Errorf("template is missing the %q line", anchor)
		}
	}
	return nil
}

// hasLine reports whether body contains a line equal to want, ignoring
// trailing whitespace.
func hasLine(body, want string) bool {
	for _, line := range strings.Split(body, "\n") {
		if strings.TrimRight(line, " \r") == want {
			return true
		}
	}
	return false
}
