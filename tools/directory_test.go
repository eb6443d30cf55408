package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestListDirectoryTool(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "assets"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html></html>"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("SECRET=1"), 0644); err != nil {
		t.Fatal(err)
	}

	tool := NewListDirectoryTool()
	result, err := tool.Execute(context.Background(), rawArgs(t, map[string]any{"path": dir}))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !result.Success() {
		t.Fatalf("Execute() failed: %v", result.Error)
	}

	lines := strings.Split(result.Output, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d entries, want 2 (hidden excluded): %q", len(lines), result.Output)
	}
	if lines[0] != "[DIR] assets" {
		t.Errorf("first entry = %q, want directory first", lines[0])
	}
	if !strings.HasPrefix(lines[1], "[FILE] index.html (") {
		t.Errorf("second entry = %q, want file with size", lines[1])
	}
}

func TestListDirectoryToolShowHidden(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("SECRET=1"), 0644); err != nil {
		t.Fatal(err)
	}

	tool := NewListDirectoryTool()
	result, err := tool.Execute(context.Background(), rawArgs(t, map[string]any{
		"path":        dir,
		"show_hidden": true,
	}))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(result.Output, ".env") {
		t.Errorf("hidden entry missing: %q", result.Output)
	}
}

func TestListDirectoryToolFaults(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	tool := NewListDirectoryTool()

	tests := []struct {
		name     string
		path     string
		wantKind Kind
	}{
		{"missing directory", filepath.Join(dir, "nope"), KindNotFound},
		{"file instead of directory", file, KindNotADirectory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tool.Execute(context.Background(), rawArgs(t, map[string]any{"path": tt.path}))
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if result.Success() {
				t.Fatal("expected failure")
			}
			if got := result.Kind(); got != tt.wantKind {
				t.Errorf("Kind() = %v, want %v", got, tt.wantKind)
			}
		})
	}
}

func TestListDirectoryToolEmpty(t *testing.T) {
	tool := NewListDirectoryTool()
	result, err := tool.Execute(context.Background(), rawArgs(t, map[string]any{"path": t.TempDir()}))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Output != "Directory is empty" {
		t.Errorf("Output = %q", result.Output)
	}
}

func TestCreateDirectoryTool(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c")

	tool := NewCreateDirectoryTool()
	result, err := tool.Execute(context.Background(), rawArgs(t, map[string]any{"path": path}))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !result.Success() {
		t.Fatalf("Execute() failed: %v", result.Error)
	}

	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		t.Errorf("directory not created: %v", err)
	}

	// Creating again is idempotent.
	result, err = tool.Execute(context.Background(), rawArgs(t, map[string]any{"path": path}))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !result.Success() {
		t.Errorf("repeat create failed: %v", result.Error)
	}
}

func TestCreateDirectoryToolOverFile(t *testing.T) {
	path := writeTemp(t, "file.txt", "x")

	tool := NewCreateDirectoryTool()
	result, err := tool.Execute(context.Background(), rawArgs(t, map[string]any{"path": path}))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Success() {
		t.Fatal("expected failure creating directory over file")
	}
	if got := result.Kind(); got != KindNotADirectory {
		t.Errorf("Kind() = %v, want %v", got, KindNotADirectory)
	}
}

func TestCopyDirectoryTool(t *testing.T) {
	src := t.TempDir()
	if err := os.MkdirAll(filepath.Join(src, "css"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "index.html"), []byte("<html></html>"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "css", "style.css"), []byte("body{}"), 0644); err != nil {
		t.Fatal(err)
	}
	dest := filepath.Join(t.TempDir(), "copy")

	tool := NewCopyDirectoryTool()
	result, err := tool.Execute(context.Background(), rawArgs(t, map[string]any{
		"source":      src,
		"destination": dest,
	}))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !result.Success() {
		t.Fatalf("Execute() failed: %v", result.Error)
	}
	if !strings.Contains(result.Output, "2 files") {
		t.Errorf("Output = %q, want 2 files reported", result.Output)
	}

	data, err := os.ReadFile(filepath.Join(dest, "css", "style.css"))
	if err != nil {
		t.Fatalf("copied file missing: %v", err)
	}
	if string(data) != "body{}" {
		t.Errorf("copied content = %q", string(data))
	}
}

func TestCopyDirectoryToolNoOverwrite(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()

	tool := NewCopyDirectoryTool()
	result, err := tool.Execute(context.Background(), rawArgs(t, map[string]any{
		"source":      src,
		"destination": dest,
		"overwrite":   false,
	}))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Success() {
		t.Fatal("expected failure when destination exists and overwrite=false")
	}
	if got := result.Kind(); got != KindAlreadyExists {
		t.Errorf("Kind() = %v, want %v", got, KindAlreadyExists)
	}
}

func TestCopyDirectoryToolMissingSource(t *testing.T) {
	tool := NewCopyDirectoryTool()
	result, err := tool.Execute(context.Background(), rawArgs(t, map[string]any{
		"source":      filepath.Join(t.TempDir(), "nope"),
		"destination": filepath.Join(t.TempDir(), "dest"),
	}))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := result.Kind(); got != KindNotFound {
		t.Errorf("Kind() = %v, want %v", got, KindNotFound)
	}
}
