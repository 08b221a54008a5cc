package notes

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
}

func TestScanner_ScanAll(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "top.md"), "# Top")
	writeFile(t, filepath.Join(root, "projects", "plan.md"), "# Plan")
	writeFile(t, filepath.Join(root, "projects", "diagram.excalidraw.md"), "{}")
	writeFile(t, filepath.Join(root, "notes.txt"), "not markdown")
	writeFile(t, filepath.Join(root, ".obsidian", "config.md"), "editor config")

	scanner := NewScanner(root)
	files, err := scanner.ScanAll(context.Background())
	if err != nil {
		t.Fatalf("ScanAll() error = %v", err)
	}

	got := make(map[string]bool)
	for _, f := range files {
		got[f.RelPath] = true
	}

	want := []string{"top.md", "projects/plan.md"}
	if len(got) != len(want) {
		t.Errorf("ScanAll() returned %d files, want %d: %v", len(got), len(want), got)
	}
	for _, rel := range want {
		if !got[rel] {
			t.Errorf("ScanAll() missing %s", rel)
		}
	}
	if got["projects/diagram.excalidraw.md"] {
		t.Error("ScanAll() should skip excalidraw sidecars")
	}
	if got[".obsidian/config.md"] {
		t.Error("ScanAll() should skip .obsidian directories")
	}
}

func TestScanner_ScanAll_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.md"), "# A")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scanner := NewScanner(root)
	if _, err := scanner.ScanAll(ctx); err == nil {
		t.Error("ScanAll() expected error for cancelled context, got nil")
	}
}

func TestIndexable(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"notes.md", true},
		{"dir/notes.md", true},
		{"notes.txt", false},
		{"drawing.excalidraw.md", false},
		{"notes", false},
	}
	for _, tt := range tests {
		if got := Indexable(tt.path); got != tt.want {
			t.Errorf("Indexable(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
