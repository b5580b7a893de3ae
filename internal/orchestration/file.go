// Package orchestration owns the persisted file surfaces in a target
// project: the AGENTS.md orchestration file, the skills/README.md catalog
// listing, and the copied skill documents. It knows the file format's
// anchors, parses existing files, and performs all writes atomically.
package orchestration

import (
	"bytes"
	"strings"
)

// Persisted layout relative to the project root.
const (
	// FileName is the orchestration file at the project root.
	FileName = "AGENTS.md"
	// SkillsDir holds copied entry documents and the catalog listing.
	SkillsDir = "skills"
	// ListingPath is the rendered catalog listing.
	ListingPath = SkillsDir + "/README.md"
)

// Structural anchors shared by the templates and the parser. The renderer
// refuses templates that lost them; the writer refuses to merge into a
// previous file that lost them.
const (
	// ActiveSkillsHeading opens the managed table of active entries.
	ActiveSkillsHeading = "## Active Skills"
	// SkillTableHeader is the managed table's header row.
	SkillTableHeader = "| Skill | When to use | Path |"
	// RulesHeading opens the user-owned section carried across runs.
	RulesHeading = "## Project-Specific Rules"
	// CatalogHeading opens the listing file's table.
	CatalogHeading = "## Skill Catalog"
	// CatalogTableHeader is the listing table's header row.
	CatalogTableHeader = "| Skill | Status | Description |"
)

// Row is one parsed line of the Active Skills table.
type Row struct {
	ID      string
	Trigger string
	Path    string
}

// ActiveRows extracts the Active Skills table from an orchestration file.
// The parse is lenient: a missing section, missing table, or stray content
// yields fewer rows, never an error.
func ActiveRows(content []byte) []Row {
	var rows []Row

	inSection := false
	forEachLine(content, func(line string) bool {
		trimmed := strings.TrimSpace(line)

		if !inSection {
			inSection = trimmed == ActiveSkillsHeading
			return true
		}
		if strings.HasPrefix(trimmed, "## ") {
			return false // next section ends the table
		}
		if row, ok := parseTableRow(trimmed); ok {
			rows = append(rows, row)
		}
		return true
	})

	return rows
}

// ActiveIDs returns just the entry IDs of the Active Skills table.
func ActiveIDs(content []byte) []string {
	rows := ActiveRows(content)
	if len(rows) == 0 {
		return nil
	}
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	return ids
}

// parseTableRow splits one "| a | b | c |" line into a Row, rejecting the
// header and separator rows.
func parseTableRow(line string) (Row, bool) {
	if !strings.HasPrefix(line, "|") {
		return Row{}, false
	}

	cells := strings.Split(strings.Trim(line, "|"), "|")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	if len(cells) < 3 || cells[0] == "" {
		return Row{}, false
	}
	// Header and separator rows are structure, not data
	if cells[0] == "Skill" || strings.HasPrefix(cells[0], "-") {
		return Row{}, false
	}

	return Row{ID: cells[0], Trigger: cells[1], Path: cells[2]}, true
}

// HasAnchors reports whether content carries every anchor the merger needs
// to locate the managed and user-owned parts of a previous file.
func HasAnchors(content []byte) bool {
	found := map[string]bool{}
	forEachLine(content, func(line string) bool {
		switch strings.TrimSpace(line) {
		case ActiveSkillsHeading:
			found[ActiveSkillsHeading] = true
		case RulesHeading:
			found[RulesHeading] = true
		}
		if strings.HasPrefix(strings.TrimSpace(line), "| Skill |") {
			found[SkillTableHeader] = true
		}
		return true
	})
	return found[ActiveSkillsHeading] && found[SkillTableHeader] && found[RulesHeading]
}

// RulesBody returns the verbatim bytes of the Project-Specific Rules
// section body: everything between the heading line and the next top-level
// heading (or end of file).
func RulesBody(content []byte) (string, bool) {
	start, end, ok := sectionBody(content, RulesHeading)
	if !ok {
		return "", false
	}
	return string(content[start:end]), true
}

// spliceRules replaces the Project-Specific Rules body in rendered with
// body, byte for byte. Returns rendered unchanged when the section is
// missing (the renderer validates anchors, so that does not happen on our
// own output).
func spliceRules(rendered []byte, body string) []byte {
	start, end, ok := sectionBody(rendered, RulesHeading)
	if !ok {
		return rendered
	}

	out := make([]byte, 0, len(rendered)-(end-start)+len(body))
	out = append(out, rendered[:start]...)
	out = append(out, body...)
	out = append(out, rendered[end:]...)
	return out
}

// sectionBody locates the byte range of a section body: from just past the
// heading line's newline to the start of the next "## " line, or EOF.
func sectionBody(content []byte, heading string) (start, end int, ok bool) {
	_, lineEnd, found := findHeadingLine(content, heading)
	if !found {
		return 0, 0, false
	}
	if lineEnd >= len(content) {
		return len(content), len(content), true
	}
	start = lineEnd + 1

	offset := start
	for offset < len(content) {
		if bytes.HasPrefix(content[offset:], []byte("## ")) {
			return start, offset, true
		}
		nl := bytes.IndexByte(content[offset:], '\n')
		if nl < 0 {
			break
		}
		offset += nl + 1
	}
	return start, len(content), true
}

// findHeadingLine returns the byte offsets of the line whose trimmed text
// equals heading.
func findHeadingLine(content []byte, heading string) (lineStart, lineEnd int, ok bool) {
	offset := 0
	for offset <= len(content) {
		nl := bytes.IndexByte(content[offset:], '\n')
		end := len(content)
		if nl >= 0 {
			end = offset + nl
		}

		if strings.TrimRight(string(content[offset:end]), " \r") == heading {
			return offset, end, true
		}
		if nl < 0 {
			break
		}
		offset = end + 1
	}
	return 0, 0, false
}

// forEachLine calls fn per line (without the newline) until fn returns
// false or the content ends.
func forEachLine(content []byte, fn func(line string) bool) {
	for _, line := range strings.Split(string(content), "\n") {
		if !fn(strings.TrimSuffix(line, "\r")) {
			return
		}
	}
}
