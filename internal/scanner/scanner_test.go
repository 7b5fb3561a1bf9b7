package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/panbanda/callflow/pkg/config"
)

func touch(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanDirFiltersLanguages(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.py"), "x = 1\n")
	touch(t, filepath.Join(dir, "b.ts"), "let x = 1\n")
	touch(t, filepath.Join(dir, "notes.txt"), "hi\n")
	touch(t, filepath.Join(dir, "data.json"), "{}\n")

	files, err := New(config.DefaultConfig()).ScanDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2: %v", len(files), files)
	}
}

func TestScanDirSkipsExcludedDirs(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "keep.py"), "x = 1\n")
	touch(t, filepath.Join(dir, "node_modules", "skip.py"), "x = 1\n")
	touch(t, filepath.Join(dir, "vendor", "skip.go"), "package v\n")

	files, err := New(config.DefaultConfig()).ScanDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "keep.py" {
		t.Errorf("got %v, want just keep.py", files)
	}
}

func TestScanDirConfigPatterns(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "app.py"), "x = 1\n")
	touch(t, filepath.Join(dir, "app_test.py"), "x = 1\n")

	files, err := New(config.DefaultConfig()).ScanDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "app.py" {
		t.Errorf("got %v, want just app.py", files)
	}
}

func TestScanDirGitignore(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	touch(t, filepath.Join(dir, ".gitignore"), "generated.py\n")
	touch(t, filepath.Join(dir, "app.py"), "x = 1\n")
	touch(t, filepath.Join(dir, "generated.py"), "x = 1\n")

	files, err := New(config.DefaultConfig()).ScanDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "app.py" {
		t.Errorf("got %v, want just app.py", files)
	}
}

func TestScanDirGitignoreDisabled(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	touch(t, filepath.Join(dir, ".gitignore"), "generated.py\n")
	touch(t, filepath.Join(dir, "generated.py"), "x = 1\n")

	cfg := config.DefaultConfig()
	cfg.Exclude.Gitignore = false

	files, err := New(cfg).ScanDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Errorf("got %v, want generated.py when gitignore is off", files)
	}
}

func TestFilterBySize(t *testing.T) {
	dir := t.TempDir()
	small := filepath.Join(dir, "small.py")
	big := filepath.Join(dir, "big.py")
	touch(t, small, "x = 1\n")
	touch(t, big, string(make([]byte, 2048)))

	filtered, skipped := FilterBySize([]string{small, big}, 1024)
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
	if len(filtered) != 1 || filtered[0] != small {
		t.Errorf("filtered = %v, want [%s]", filtered, small)
	}
}

func TestFilterBySizeNoLimit(t *testing.T) {
	files := []string{"a", "b"}
	filtered, skipped := FilterBySize(files, 0)
	if skipped != 0 || len(filtered) != 2 {
		t.Errorf("limit 0 must pass everything through, got %v (%d skipped)", filtered, skipped)
	}
}
