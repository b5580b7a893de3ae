package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/gorewood/joinery/internal/project"
)

func TestInspect_JSON(t *testing.T) {
	projectRoot := writeProject(t)

	out, err := runCommand(t, "inspect", "--json", "--project-root", projectRoot)
	if err != nil {
		t.Fatalf("Execute() error = %v\nOutput: %s", err, out)
	}

	var fp project.Fingerprint
	if jerr := json.Unmarshal([]byte(out), &fp); jerr != nil {
		t.Fatalf("Output should be valid JSON: %v\nOutput: %s", jerr, out)
	}

	if fp.Name != "demo-app" {
		t.Errorf("Name = %q, want demo-app", fp.Name)
	}
	found := false
	for _, tag := range fp.Tags {
		if tag == "nextjs" {
			found = true
		}
	}
	if !found {
		t.Errorf("Tags = %v, should include nextjs", fp.Tags)
	}
}

func TestInspect_Human(t *testing.T) {
	projectRoot := writeProject(t)

	out, err := runCommand(t, "inspect", "--project-root", projectRoot)
	if err != nil {
		t.Fatalf("Execute() error = %v\nOutput: %s", err, out)
	}

	for _, expected := range []string{"demo-app", "nextjs", "Layout"} {
		if !strings.Contains(out, expected) {
			t.Errorf("output should contain %q: %q", expected, out)
		}
	}
}

func TestInspect_EmptyDirectory(t *testing.T) {
	projectRoot := t.TempDir()

	out, err := runCommand(t, "inspect", "--json", "--project-root", projectRoot)
	if err != nil {
		t.Fatalf("a directory without a manifest still has a fingerprint, got %v", err)
	}

	var fp project.Fingerprint
	if jerr := json.Unmarshal([]byte(out), &fp); jerr != nil {
		t.Fatalf("Output should be valid JSON: %v\nOutput: %s", jerr, out)
	}
	if len(fp.Tags) != 0 {
		t.Errorf("Tags = %v, want none for an empty directory", fp.Tags)
	}
}
