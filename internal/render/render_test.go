package render

import (
	"reflect"
	"strings"
	"testing"

	"github.com/gorewood/joinery/internal/catalog"
	"github.com/gorewood/joinery/internal/match"
	"github.com/gorewood/joinery/internal/orchestration"
	"github.com/gorewood/joinery/internal/project"
)

func testFingerprint() project.Fingerprint {
	return project.Fingerprint{
		Name:    "demo-app",
		Purpose: "A demo web app",
		Tags:    []string{"nextjs", "react", "typescript"},
		Layout:  project.LayoutSingleApp,
	}
}

func testEntries() []catalog.Entry {
	return []catalog.Entry{
		{
			ID:          "nextjs-app-router",
			Description: "Next.js App Router conventions",
			Trigger:     "Working on routes or server components",
			Triggers:    []string{"nextjs"},
			Tier:        catalog.TierKnowledge,
		},
		{
			ID:          "skills-orchestration",
			Description: "How to use the skills system",
			Tier:        catalog.TierHybrid,
			Always:      true,
		},
		{
			ID:          "supabase-auth",
			Description: "Supabase auth | session patterns",
			Trigger:     "Anything touching authentication",
			Triggers:    []string{"supabase"},
			Tier:        catalog.TierKnowledge,
		},
	}
}

func testResult() match.Result {
	return match.Result{Selections: []match.Selection{
		{ID: "nextjs-app-router", Selected: true, Reason: "Working on routes or server components"},
		{ID: "skills-orchestration", Selected: true, Reason: "Always included"},
		{ID: "supabase-auth", Selected: false, Reason: "Anything touching authentication"},
	}}
}

func TestBuildValues(t *testing.T) {
	values := BuildValues(testFingerprint(), testResult(), testEntries())

	wantSkillTable := "| nextjs-app-router | Working on routes or server components | skills/nextjs-app-router/SKILL.md |\n" +
		"| skills-orchestration | Always | skills/skills-orchestration/SKILL.md |"
	wantCatalogTable := "| nextjs-app-router | Active | Next.js App Router conventions |\n" +
		"| skills-orchestration | Active | How to use the skills system |\n" +
		"| supabase-auth | Available | Supabase auth / session patterns |"

	tests := []struct {
		token string
		want  string
	}{
		{TokenProjectName, "demo-app"},
		{TokenProjectPurpose, "A demo web app"},
		{TokenStackSummary, "nextjs, react, typescript"},
		{TokenProjectLayout, "single-app"},
		{TokenActiveCount, "2"},
		{TokenTotalCount, "3"},
		{TokenSkillTable, wantSkillTable},
		{TokenCatalogTable, wantCatalogTable},
		{TokenProjectRules, DefaultRules},
	}

	for _, tt := range tests {
		if got := values[tt.token]; got != tt.want {
			t.Errorf("values[%s] = %q, want %q", tt.token, got, tt.want)
		}
	}
}

// Rendering the orchestration file and parsing it back must recover
// exactly the selected entry IDs.
func TestRender_RoundTrip(t *testing.T) {
	tmpl, err := loadBuiltin(KindOrchestration)
	if err != nil {
		t.Fatalf("loadBuiltin() error = %v", err)
	}

	values := BuildValues(testFingerprint(), testResult(), testEntries())
	rendered, warnings := Render(tmpl, values)
	if len(warnings) != 0 {
		t.Fatalf("Render() warnings = %v, want none", warnings)
	}

	got := orchestration.ActiveIDs([]byte(rendered))
	want := testResult().SelectedIDs()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ActiveIDs(rendered) = %v, want %v", got, want)
	}

	if !orchestration.HasAnchors([]byte(rendered)) {
		t.Error("rendered output lost its structural anchors")
	}
	body, ok := orchestration.RulesBody([]byte(rendered))
	if !ok {
		t.Fatal("rendered output has no rules section")
	}
	if body != "\n"+DefaultRules+"\n" {
		t.Errorf("rules body = %q, want the default placeholder", body)
	}
}

func TestRender_Deterministic(t *testing.T) {
	tmpl, err := loadBuiltin(KindOrchestration)
	if err != nil {
		t.Fatalf("loadBuiltin() error = %v", err)
	}
	values := BuildValues(testFingerprint(), testResult(), testEntries())

	first, _ := Render(tmpl, values)
	second, _ := Render(tmpl, values)
	if first != second {
		t.Error("two renders of the same inputs differ")
	}
}

func TestRender_Listing(t *testing.T) {
	tmpl, err := loadBuiltin(KindListing)
	if err != nil {
		t.Fatalf("loadBuiltin() error = %v", err)
	}

	values := BuildValues(testFingerprint(), testResult(), testEntries())
	rendered, warnings := Render(tmpl, values)
	if len(warnings) != 0 {
		t.Fatalf("Render() warnings = %v, want none", warnings)
	}

	if !strings.Contains(rendered, "2 of 3 skills are active") {
		t.Error("listing should state the active count")
	}
	if !strings.Contains(rendered, "| supabase-auth | Available |") {
		t.Error("listing should mark unselected entries Available")
	}
	if !strings.Contains(rendered, "| nextjs-app-router | Active |") {
		t.Error("listing should mark selected entries Active")
	}
	if strings.Contains(rendered, "schema:") {
		t.Error("rendered listing should not contain template frontmatter")
	}
}

func TestRender_EmptySkillTable(t *testing.T) {
	tmpl, err := loadBuiltin(KindOrchestration)
	if err != nil {
		t.Fatalf("loadBuiltin() error = %v", err)
	}

	values := BuildValues(project.Fingerprint{}, match.Result{}, nil)
	rendered, warnings := Render(tmpl, values)

	if rows := orchestration.ActiveRows([]byte(rendered)); len(rows) != 0 {
		t.Errorf("ActiveRows(rendered) = %v, want none", rows)
	}
	// The table token renders to nothing; only the descriptive tokens get
	// the empty-value marker.
	for _, w := range warnings {
		if strings.Contains(w, TokenSkillTable) {
			t.Errorf("unexpected warning for the empty skill table: %q", w)
		}
	}
	if !strings.Contains(rendered, EmptyValueMarker) {
		t.Error("undetected project name should render the empty-value marker")
	}
}

func TestRender_EmptyValueMarker(t *testing.T) {
	tmpl := &Template{Body: "# {PROJECT_NAME}\n"}

	rendered, warnings := Render(tmpl, Values{})

	if rendered != "# "+EmptyValueMarker+"\n" {
		t.Errorf("rendered = %q", rendered)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "{PROJECT_NAME}") {
		t.Errorf("warnings = %v, want one naming {PROJECT_NAME}", warnings)
	}
}

func TestRender_UnknownTokenLeftVerbatim(t *testing.T) {
	tmpl := &Template{Body: "intro {MYSTERY_TOKEN} outro\n"}

	rendered, warnings := Render(tmpl, Values{})

	if !strings.Contains(rendered, "{MYSTERY_TOKEN}") {
		t.Error("unknown token should be left as written")
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "{MYSTERY_TOKEN}") {
		t.Errorf("warnings = %v, want one naming {MYSTERY_TOKEN}", warnings)
	}
}

func TestRender_MergeAfterUserEdit(t *testing.T) {
	tmpl, err := loadBuiltin(KindOrchestration)
	if err != nil {
		t.Fatalf("loadBuiltin() error = %v", err)
	}
	values := BuildValues(testFingerprint(), testResult(), testEntries())
	rendered, _ := Render(tmpl, values)

	// Simulate the user replacing the placeholder rules.
	edited := strings.Replace(rendered, DefaultRules, "Custom rule X", 1)
	body, ok := orchestration.RulesBody([]byte(edited))
	if !ok {
		t.Fatal("edited file lost its rules section")
	}
	if !strings.Contains(body, "Custom rule X") {
		t.Errorf("rules body = %q, want the user's edit", body)
	}
}
