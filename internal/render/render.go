package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gorewood/joinery/internal/catalog"
	"github.com/gorewood/joinery/internal/match"
	"github.com/gorewood/joinery/internal/orchestration"
	"github.com/gorewood/joinery/internal/project"
)

// Token names accepted in template bodies, written as {NAME}.
const (
	TokenProjectName    = "PROJECT_NAME"
	TokenProjectPurpose = "PROJECT_PURPOSE"
	TokenStackSummary   = "STACK_SUMMARY"
	TokenProjectLayout  = "PROJECT_LAYOUT"
	TokenSkillTable     = "SKILL_TABLE"
	TokenCatalogTable   = "CATALOG_TABLE"
	TokenActiveCount    = "ACTIVE_COUNT"
	TokenTotalCount     = "TOTAL_COUNT"
	TokenProjectRules   = "PROJECT_RULES"
)

// EmptyValueMarker replaces a token whose value could not be detected.
// A visible marker beats a leftover brace token in the written file.
const EmptyValueMarker = "(not detected)"

// DefaultRules seeds the Project-Specific Rules section on first write.
// Reruns carry the user's edits forward instead.
const DefaultRules = "_Add project-specific rules here._"

// tokenOrder fixes the substitution pass so warnings come out in a
// stable order.
var tokenOrder = []string{
	TokenProjectName,
	TokenProjectPurpose,
	TokenStackSummary,
	TokenProjectLayout,
	TokenSkillTable,
	TokenCatalogTable,
	TokenActiveCount,
	TokenTotalCount,
	TokenProjectRules,
}

// allowEmpty marks tokens that legitimately render to nothing. An empty
// skill table must stay empty so a reread of the file yields no rows.
var allowEmpty = map[string]bool{
	TokenSkillTable:   true,
	TokenCatalogTable: true,
}

var tokenPattern = regexp.MustCompile(`\{[A-Z][A-Z0-9_]*\}`)

// Values maps token names to their substitution text.
type Values map[string]string

// BuildValues computes every token value from the project fingerprint,
// the match result, and the catalog entries.
func BuildValues(fp project.Fingerprint, result match.Result, entries []catalog.Entry) Values {
	byID := make(map[string]catalog.Entry, len(entries))
	for _, entry := range entries {
		byID[entry.ID] = entry
	}

	return Values{
		TokenProjectName:    fp.Name,
		TokenProjectPurpose: fp.Purpose,
		TokenStackSummary:   strings.Join(fp.Tags, ", "),
		TokenProjectLayout:  string(fp.Layout),
		TokenSkillTable:     skillTable(result, byID),
		TokenCatalogTable:   catalogTable(result, entries),
		TokenActiveCount:    strconv.Itoa(len(result.SelectedIDs())),
		TokenTotalCount:     strconv.Itoa(len(entries)),
		TokenProjectRules:   DefaultRules,
	}
}

// Render substitutes tokens in the template body and returns the rendered
// content plus any warnings. Unrecognized tokens are left as written; a
// known token without a value becomes the empty-value marker. Neither is
// fatal.
func Render(tmpl *Template, values Values) (string, []string) {
	var warnings []string
	for _, tok := range unknownTokens(tmpl.Body) {
		warnings = append(warnings, fmt.Sprintf("unknown token %s left as written", tok))
	}

	result := tmpl.Body
	for _, name := range tokenOrder {
		token := "{" + name + "}"
		if !strings.Contains(result, token) {
			continue
		}
		val := values[name]
		if val == "" && !allowEmpty[name] {
			val = EmptyValueMarker
			warnings = append(warnings, fmt.Sprintf("no detected value for %s; wrote %q", token, EmptyValueMarker))
		}
		result = strings.ReplaceAll(result, token, val)
	}
	return result, warnings
}

// unknownTokens returns the {TOKEN}-shaped strings in body that are not
// part of the accepted set, deduplicated in order of first appearance.
func unknownTokens(body string) []string {
	known := make(map[string]bool, len(tokenOrder))
	for _, name := range tokenOrder {
		known[name] = true
	}

	seen := map[string]bool{}
	var out []string
	for _, tok := range tokenPattern.FindAllString(body, -1) {
		name := strings.Trim(tok, "{}")
		if known[name] || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

// skillTable builds the Active Skills rows, one per selected entry, in
// selection order. Returns "" when nothing is selected.
func skillTable(result match.Result, byID map[string]catalog.Entry) string {
	var rows []string
	for _, sel := range result.Selections {
		if !sel.Selected {
			continue
		}
		entry, ok := byID[sel.ID]
		if !ok {
			continue
		}
		path := orchestration.SkillsDir + "/" + entry.ID + "/" + catalog.PrimaryDocName
		rows = append(rows, tableRow(entry.ID, whenToUse(entry), path))
	}
	return strings.Join(rows, "\n")
}

// catalogTable builds the listing rows, one per catalog entry, marking
// each Active or Available.
func catalogTable(result match.Result, entries []catalog.Entry) string {
	var rows []string
	for _, entry := range entries {
		status := "Available"
		if result.IsSelected(entry.ID) {
			status = "Active"
		}
		rows = append(rows, tableRow(entry.ID, status, entry.Description))
	}
	return strings.Join(rows, "\n")
}

// whenToUse picks the "When to use" cell: the trigger phrase when the
// entry has one, otherwise its description.
func whenToUse(entry catalog.Entry) string {
	if entry.Trigger != "" {
		return entry.Trigger
	}
	if entry.Always {
		return "Always"
	}
	return entry.Description
}

func tableRow(cells ...string) string {
	for i := range cells {
		cells[i] = cell(cells[i])
	}
	return "| " + strings.Join(cells, " | ") + " |"
}

// cell makes a string safe to sit in a markdown table cell. Pipes and
// newlines would break the row.
func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", "/")
}
