package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// --- Test fixtures ---

func writeEntry(t *testing.T, root, id, extra string) {
	t.Helper()
	dir := filepath.Join(root, "skills", id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := fmt.Sprintf("---\nname: %s\ndescription: %s guidance\n%s---\n\n# %s\n", id, id, extra, id)
	if err := os.WriteFile(filepath.Join(dir, "SKILL.md"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeCatalog(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeEntry(t, root, "nextjs-app-router", "trigger: Routing work\ntriggers: [nextjs]\n")
	writeEntry(t, root, "skills-orchestration", "tier: hybrid\nalways: true\n")
	writeEntry(t, root, "supabase-auth", "trigger: Auth flows\ntriggers: [supabase]\n")
	return root
}

func writeProject(t *testing.T, manifest string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "package.json"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

// --- list_catalog handler tests ---

func TestHandleListCatalog(t *testing.T) {
	catalogDir := writeCatalog(t)
	handler := handleListCatalog()

	_, out, err := handler(context.Background(), &mcp.CallToolRequest{}, ListCatalogInput{CatalogOrigin: catalogDir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Count != 3 {
		t.Errorf("Count = %d, want 3", out.Count)
	}
	if out.Origin != catalogDir {
		t.Errorf("Origin = %q, want %q", out.Origin, catalogDir)
	}
	if out.Entries[0].ID != "nextjs-app-router" {
		t.Errorf("Entries[0].ID = %q, want nextjs-app-router (sorted)", out.Entries[0].ID)
	}
	if out.Entries[1].Tier != "hybrid" || !out.Entries[1].Always {
		t.Errorf("Entries[1] = %+v, want the hybrid always entry", out.Entries[1])
	}
	if len(out.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", out.Warnings)
	}
}

func TestHandleListCatalog_BadOrigin(t *testing.T) {
	handler := handleListCatalog()

	_, _, err := handler(context.Background(), &mcp.CallToolRequest{}, ListCatalogInput{
		CatalogOrigin: filepath.Join(t.TempDir(), "missing"),
	})
	if err == nil {
		t.Fatal("expected error for unreachable origin, got nil")
	}
}

// --- inspect handler tests ---

func TestHandleInspect(t *testing.T) {
	projectDir := writeProject(t, `{"name":"demo-app","description":"A demo","dependencies":{"next":"15.0.0"}}`)
	handler := handleInspect()

	_, out, err := handler(context.Background(), &mcp.CallToolRequest{}, InspectInput{ProjectRoot: projectDir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fp := out.Fingerprint
	if fp.Name != "demo-app" {
		t.Errorf("Name = %q, want demo-app", fp.Name)
	}
	if len(fp.Tags) != 1 || fp.Tags[0] != "nextjs" {
		t.Errorf("Tags = %v, want [nextjs]", fp.Tags)
	}
}

// --- sync handler tests ---

func TestHandleSync_PreviewByDefault(t *testing.T) {
	catalogDir := writeCatalog(t)
	projectDir := writeProject(t, `{"name":"demo-app","dependencies":{"next":"15.0.0"}}`)
	handler := handleSync()

	_, out, err := handler(context.Background(), &mcp.CallToolRequest{}, SyncInput{
		ProjectRoot:   projectDir,
		CatalogOrigin: catalogDir,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Report == nil || !out.Report.DryRun {
		t.Fatal("sync without apply should report a dry run")
	}
	if _, statErr := os.Stat(filepath.Join(projectDir, "AGENTS.md")); statErr == nil {
		t.Error("preview wrote AGENTS.md")
	}
}

func TestHandleSync_Apply(t *testing.T) {
	catalogDir := writeCatalog(t)
	projectDir := writeProject(t, `{"name":"demo-app","dependencies":{"next":"15.0.0"}}`)
	handler := handleSync()

	_, out, err := handler(context.Background(), &mcp.CallToolRequest{}, SyncInput{
		ProjectRoot:   projectDir,
		CatalogOrigin: catalogDir,
		Apply:         true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := string(out.Report.Phase); got != "verified" {
		t.Errorf("Phase = %q, want verified", got)
	}
	for _, rel := range []string{"AGENTS.md", "skills/README.md", "skills/nextjs-app-router/SKILL.md"} {
		if _, statErr := os.Stat(filepath.Join(projectDir, rel)); statErr != nil {
			t.Errorf("missing %s after apply", rel)
		}
	}
}

// A run that completes with findings is a result, not a tool failure.
func TestHandleSync_FindingsAreNotErrors(t *testing.T) {
	catalogDir := writeCatalog(t)
	projectDir := writeProject(t, `{"name":"bare"}`)
	handler := handleSync()

	_, out, err := handler(context.Background(), &mcp.CallToolRequest{}, SyncInput{
		ProjectRoot:   projectDir,
		CatalogOrigin: catalogDir,
		Apply:         true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Report == nil || len(out.Report.Findings) == 0 {
		t.Fatal("expected the empty-detection finding in the report")
	}
	if got := out.Report.SelectedIDs(); len(got) != 1 || got[0] != "skills-orchestration" {
		t.Errorf("SelectedIDs = %v, want only the always entry", got)
	}
}
