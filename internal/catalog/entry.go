// Package catalog enumerates and fetches skill documents from a catalog
// origin. An origin is either a local directory or a remote zip archive;
// both expose the same Source interface.
package catalog

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

// Tier declares what an entry is allowed to do in the consuming assistant.
type Tier string

const (
	// TierKnowledge entries are read-only conventions and background.
	TierKnowledge Tier = "knowledge"
	// TierTool entries describe read-write capabilities.
	TierTool Tier = "tool"
	// TierHybrid entries carry both.
	TierHybrid Tier = "hybrid"
)

// Entry is one catalog skill: a directory holding a primary SKILL.md plus
// optional sub-resource documents. Entries are immutable once listed.
type Entry struct {
	// ID is the kebab-case slug; it always equals the entry directory name.
	ID          string
	Description string
	// Trigger is the free-text relevance description shown to users.
	Trigger string
	// Triggers are the declared tags compared against the project fingerprint.
	Triggers []string
	Tier     Tier
	// Always marks meta entries selected regardless of the fingerprint.
	Always bool
	// Documents are paths relative to the entry directory, primary doc first.
	Documents []string
}

// Document is one fetched file of an entry. Path is relative to the entry
// directory; Content is verbatim catalog bytes.
type Document struct {
	Path    string
	Content []byte
}

// PrimaryDocName is the file every entry directory must contain.
const PrimaryDocName = "SKILL.md"

// parseEntry reads SKILL.md frontmatter into an Entry. dirName is the entry
// directory name; the frontmatter name must match it so rendered paths and
// slugs never diverge.
func parseEntry(dirName string, raw []byte) (Entry, error) {
	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	var buf bytes.Buffer
	pctx := parser.NewContext()
	if err := md.Convert(raw, &buf, parser.WithContext(pctx)); err != nil {
		return Entry{}, fmt.Errorf("parsing markdown: %w", err)
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return Entry{}, fmt.Errorf("missing frontmatter")
	}

	name, _ := metaData["name"].(string)
	description, _ := metaData["description"].(string)

	if name == "" {
		return Entry{}, fmt.Errorf("frontmatter field %q is required", "name")
	}
	if name != dirName {
		return Entry{}, fmt.Errorf("frontmatter name %q does not match directory %q", name, dirName)
	}
	if description == "" {
		return Entry{}, fmt.Errorf("frontmatter field %q is required", "description")
	}

	tier, err := parseTier(metaData["tier"])
	if err != nil {
		return Entry{}, err
	}

	trigger, _ := metaData["trigger"].(string)
	always, _ := metaData["always"].(bool)

	return Entry{
		ID:          name,
		Description: description,
		Trigger:     trigger,
		Triggers:    parseTriggers(metaData["triggers"]),
		Tier:        tier,
		Always:      always,
	}, nil
}

// parseTier validates the tier field; absent means knowledge.
func parseTier(v any) (Tier, error) {
	s, _ := v.(string)
	switch Tier(s) {
	case "", TierKnowledge:
		return TierKnowledge, nil
	case TierTool:
		return TierTool, nil
	case TierHybrid:
		return TierHybrid, nil
	default:
		return "", fmt.Errorf("unknown tier %q", s)
	}
}

// parseTriggers normalizes the declared trigger tags to lowercase.
// Non-string items are dropped rather than failing the whole entry.
func parseTriggers(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	tags := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			tags = append(tags, strings.ToLower(strings.TrimSpace(s)))
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}
