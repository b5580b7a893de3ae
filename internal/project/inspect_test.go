package project

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// writeProject lays out files (slash-relative path → content) under a temp
// project root.
func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestInspect_NoManifest(t *testing.T) {
	root := t.TempDir()

	fp, err := Inspect(root)
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}

	if !fp.Empty() {
		t.Errorf("Tags = %v, want empty fingerprint", fp.Tags)
	}
	if fp.Layout != LayoutSingleApp {
		t.Errorf("Layout = %q, want %q", fp.Layout, LayoutSingleApp)
	}
	if fp.Name != "" || fp.Purpose != "" {
		t.Errorf("Name/Purpose = %q/%q, want empty", fp.Name, fp.Purpose)
	}
}

func TestInspect_DetectsTags(t *testing.T) {
	root := writeProject(t, map[string]string{
		"package.json": `{
  "name": "demo-app",
  "description": "A demo storefront",
  "dependencies": {
    "next": "15.0.0",
    "react": "19.0.0",
    "react-dom": "19.0.0",
    "zod": "3.23.0",
    "@supabase/supabase-js": "2.45.0",
    "left-pad": "1.3.0"
  },
  "devDependencies": {
    "typescript": "5.6.0",
    "tailwindcss": "4.0.0",
    "vitest": "2.0.0"
  }
}`,
	})

	fp, err := Inspect(root)
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}

	want := []string{"nextjs", "react", "supabase", "tailwind", "testing", "typescript", "zod"}
	if !reflect.DeepEqual(fp.Tags, want) {
		t.Errorf("Tags = %v, want sorted %v", fp.Tags, want)
	}
	if fp.Name != "demo-app" {
		t.Errorf("Name = %q", fp.Name)
	}
	if fp.Purpose != "A demo storefront" {
		t.Errorf("Purpose = %q", fp.Purpose)
	}
}

func TestInspect_MalformedManifest(t *testing.T) {
	root := writeProject(t, map[string]string{
		"package.json": "{not json",
	})

	if _, err := Inspect(root); err == nil {
		t.Fatal("Inspect() expected error for malformed manifest")
	}
}

func TestInspect_Deterministic(t *testing.T) {
	root := writeProject(t, map[string]string{
		"package.json": `{"dependencies": {"react": "19.0.0", "zod": "3.0.0", "jest": "29.0.0"}}`,
	})

	first, err := Inspect(root)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Inspect(root)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Inspect() not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestInspect_Layout(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  Layout
	}{
		{
			name: "workspaces list glob",
			files: map[string]string{
				"package.json":             `{"workspaces": ["packages/*"]}`,
				"packages/ui/package.json": `{"name": "ui"}`,
			},
			want: LayoutMonorepo,
		},
		{
			name: "workspaces yarn object form",
			files: map[string]string{
				"package.json":          `{"workspaces": {"packages": ["apps/*"]}}`,
				"apps/web/package.json": `{"name": "web"}`,
			},
			want: LayoutMonorepo,
		},
		{
			name: "conventional container without workspaces field",
			files: map[string]string{
				"package.json":               `{"name": "root"}`,
				"packages/core/package.json": `{"name": "core"}`,
			},
			want: LayoutMonorepo,
		},
		{
			name: "workspaces field but no nested packages",
			files: map[string]string{
				"package.json": `{"workspaces": ["packages/*"]}`,
			},
			want: LayoutSingleApp,
		},
		{
			name: "plain single app",
			files: map[string]string{
				"package.json": `{"name": "app", "dependencies": {"react": "19.0.0"}}`,
				"src/keep":     "",
			},
			want: LayoutSingleApp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := writeProject(t, tt.files)

			fp, err := Inspect(root)
			if err != nil {
				t.Fatalf("Inspect() error = %v", err)
			}
			if fp.Layout != tt.want {
				t.Errorf("Layout = %q, want %q", fp.Layout, tt.want)
			}
		})
	}
}

func TestInspect_PriorActive(t *testing.T) {
	root := writeProject(t, map[string]string{
		"package.json": `{"name": "demo"}`,
		"AGENTS.md": `# demo

## Active Skills

| Skill | When to use | Path |
|-------|-------------|------|
| zod-validation | Use for schema validation | skills/zod-validation/SKILL.md |

## Project-Specific Rules

Keep it simple.
`,
	})

	fp, err := Inspect(root)
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}

	if len(fp.PriorActive) != 1 || fp.PriorActive[0] != "zod-validation" {
		t.Errorf("PriorActive = %v, want [zod-validation]", fp.PriorActive)
	}
}

func TestInspect_PriorActiveLenientOnForeignFile(t *testing.T) {
	root := writeProject(t, map[string]string{
		"AGENTS.md": "# Custom agent notes\n\nNo managed structure.\n",
	})

	fp, err := Inspect(root)
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if fp.PriorActive != nil {
		t.Errorf("PriorActive = %v, want nil for unrecognized file", fp.PriorActive)
	}
}

func TestHasTag(t *testing.T) {
	fp := Fingerprint{Tags: []string{"nextjs", "react"}}

	if !fp.HasTag("react") {
		t.Error("HasTag(react) = false")
	}
	if fp.HasTag("vue") {
		t.Error("HasTag(vue) = true")
	}
}
