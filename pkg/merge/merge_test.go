package merge

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPlanLastInListWins(t *testing.T) {
	root := t.TempDir()
	modA := filepath.Join(root, "mod_a")
	modB := filepath.Join(root, "mod_b")

	writeFile(t, filepath.Join(modA, "x.txt"), "from a")
	writeFile(t, filepath.Join(modB, "x.txt"), "from b")

	dest := filepath.Join(root, "merged")
	result, err := Plan([]ModDir{
		{Path: modA, Enabled: true},
		{Path: modB, Enabled: true},
	}, dest)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", result.Warnings)
	}

	got := readFile(t, filepath.Join(dest, "x.txt"))
	if got != "from b" {
		t.Errorf("x.txt = %q, want %q (later mod should win)", got, "from b")
	}
}

func TestPlanDisjointFiles(t *testing.T) {
	root := t.TempDir()
	modA := filepath.Join(root, "mod_a")
	modB := filepath.Join(root, "mod_b")

	writeFile(t, filepath.Join(modA, "x.txt"), "x contents")
	writeFile(t, filepath.Join(modB, "y.txt"), "y contents")

	dest := filepath.Join(root, "merged")
	result, err := Plan([]ModDir{
		{Path: modA, Enabled: true},
		{Path: modB, Enabled: true},
	}, dest)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if result.FilesCopied != 2 {
		t.Errorf("FilesCopied = %d, want 2", result.FilesCopied)
	}

	if got := readFile(t, filepath.Join(dest, "x.txt")); got != "x contents" {
		t.Errorf("x.txt = %q", got)
	}
	if got := readFile(t, filepath.Join(dest, "y.txt")); got != "y contents" {
		t.Errorf("y.txt = %q", got)
	}
}

func TestPlanSkipsDisabledMods(t *testing.T) {
	root := t.TempDir()
	modA := filepath.Join(root, "mod_a")
	writeFile(t, filepath.Join(modA, "x.txt"), "should not appear")

	dest := filepath.Join(root, "merged")
	result, err := Plan([]ModDir{{Path: modA, Enabled: false}}, dest)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if result.FilesCopied != 0 {
		t.Errorf("FilesCopied = %d, want 0", result.FilesCopied)
	}
	if _, err := os.Stat(filepath.Join(dest, "x.txt")); !os.IsNotExist(err) {
		t.Error("disabled mod's file should not be copied")
	}
}

func TestPlanWarnsOnMissingModDir(t *testing.T) {
	root := t.TempDir()
	missing := filepath.Join(root, "does-not-exist")

	dest := filepath.Join(root, "merged")
	result, err := Plan([]ModDir{{Path: missing, Enabled: true}}, dest)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("Warnings = %v, want exactly one", result.Warnings)
	}
}

func TestPlanSingleModIsIdempotent(t *testing.T) {
	root := t.TempDir()
	modA := filepath.Join(root, "mod_a")
	writeFile(t, filepath.Join(modA, "x.txt"), "only copy")

	dest := filepath.Join(root, "merged")
	result, err := Plan([]ModDir{{Path: modA, Enabled: true}}, dest)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if result.FilesCopied != 1 {
		t.Errorf("FilesCopied = %d, want 1", result.FilesCopied)
	}
	if got := readFile(t, filepath.Join(dest, "x.txt")); got != "only copy" {
		t.Errorf("x.txt = %q", got)
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file %s: %v", path, err)
	}
	return string(data)
}
