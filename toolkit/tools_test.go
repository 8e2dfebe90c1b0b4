package toolkit

import (
	"context"
	"strings"
	"testing"
)

func TestShellToolInvoke(t *testing.T) {
	env := NewLocalEnvironment(t.TempDir())
	tool := NewShellTool(env, 5000, 10000)

	out, err := tool.Invoke(context.Background(), map[string]any{"command": "echo shell works"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "shell works") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestShellToolReportsExitCode(t *testing.T) {
	env := NewLocalEnvironment(t.TempDir())
	tool := NewShellTool(env, 5000, 10000)

	out, err := tool.Invoke(context.Background(), map[string]any{"command": "exit 2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "[Exit code: 2]") {
		t.Errorf("expected exit code marker: %q", out)
	}
}

func TestShellToolTimeoutNotice(t *testing.T) {
	env := NewLocalEnvironment(t.TempDir())
	tool := NewShellTool(env, 100, 10000)

	out, err := tool.Invoke(context.Background(), map[string]any{"command": "sleep 5"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "timed out") {
		t.Errorf("expected timeout notice: %q", out)
	}
}

func TestShellToolCapsTimeout(t *testing.T) {
	env := NewLocalEnvironment(t.TempDir())
	tool := NewShellTool(env, 100, 200)

	// A requested timeout over the cap still gets cut off at the cap.
	out, err := tool.Invoke(context.Background(), map[string]any{
		"command":    "sleep 5",
		"timeout_ms": 60000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "timed out after 200ms") {
		t.Errorf("expected the capped timeout in the notice: %q", out)
	}
}

func TestShellToolRequiresCommand(t *testing.T) {
	tool := NewShellTool(NewLocalEnvironment(t.TempDir()), 0, 0)
	if _, err := tool.Invoke(context.Background(), map[string]any{}); err == nil {
		t.Fatal("expected error for missing command")
	}
}

func TestWriteThenReadFileTools(t *testing.T) {
	env := NewLocalEnvironment(t.TempDir())
	write := NewWriteFileTool(env)
	read := NewReadFileTool(env)

	out, err := write.Invoke(context.Background(), map[string]any{
		"file_path": "notes.txt",
		"content":   "first\nsecond",
	})
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if !strings.Contains(out, "notes.txt") {
		t.Errorf("write confirmation should name the file: %q", out)
	}

	out, err = read.Invoke(context.Background(), map[string]any{"file_path": "notes.txt"})
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !strings.Contains(out, "2 | second") {
		t.Errorf("unexpected read output: %q", out)
	}
}

func TestEditFileTool(t *testing.T) {
	env := NewLocalEnvironment(t.TempDir())
	if err := env.WriteFile("code.go", "func old() {}\n"); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	edit := NewEditFileTool(env)

	out, err := edit.Invoke(context.Background(), map[string]any{
		"file_path":  "code.go",
		"old_string": "func old()",
		"new_string": "func renamed()",
	})
	if err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if !strings.Contains(out, "1 occurrence") {
		t.Errorf("unexpected confirmation: %q", out)
	}

	raw, err := env.ReadRaw("code.go")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !strings.Contains(raw, "func renamed()") {
		t.Errorf("edit not applied: %q", raw)
	}
}

func TestEditFileToolRejectsAmbiguousMatch(t *testing.T) {
	env := NewLocalEnvironment(t.TempDir())
	if err := env.WriteFile("dup.txt", "x\nx\n"); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	edit := NewEditFileTool(env)

	_, err := edit.Invoke(context.Background(), map[string]any{
		"file_path":  "dup.txt",
		"old_string": "x",
		"new_string": "y",
	})
	if err == nil || !strings.Contains(err.Error(), "replace_all") {
		t.Fatalf("expected ambiguity error suggesting replace_all, got %v", err)
	}

	// replace_all resolves the ambiguity.
	out, err := edit.Invoke(context.Background(), map[string]any{
		"file_path":   "dup.txt",
		"old_string":  "x",
		"new_string":  "y",
		"replace_all": true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "2 occurrence") {
		t.Errorf("expected 2 replacements: %q", out)
	}
}

func TestEditFileToolMissingOldString(t *testing.T) {
	env := NewLocalEnvironment(t.TempDir())
	if err := env.WriteFile("a.txt", "content"); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	edit := NewEditFileTool(env)

	_, err := edit.Invoke(context.Background(), map[string]any{
		"file_path":  "a.txt",
		"old_string": "not present",
		"new_string": "anything",
	})
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestGlobToolInvoke(t *testing.T) {
	env := NewLocalEnvironment(t.TempDir())
	for _, name := range []string{"one.md", "two.md"} {
		if err := env.WriteFile(name, ""); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
	}
	tool := NewGlobTool(env)

	out, err := tool.Invoke(context.Background(), map[string]any{"pattern": "*.md"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "one.md") || !strings.Contains(out, "two.md") {
		t.Errorf("unexpected matches: %q", out)
	}

	out, err = tool.Invoke(context.Background(), map[string]any{"pattern": "*.xyz"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "No files matched") {
		t.Errorf("expected no-match notice: %q", out)
	}
}

func TestCoreToolsNamesAreUnique(t *testing.T) {
	env := NewLocalEnvironment(t.TempDir())
	seen := map[string]bool{}
	for _, tool := range CoreTools(env) {
		name := tool.Descriptor().Name
		if seen[name] {
			t.Errorf("duplicate tool name %q", name)
		}
		seen[name] = true
	}
	if len(seen) != 6 {
		t.Errorf("expected 6 core tools, got %d", len(seen))
	}
}
