package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/dirsort/internal/config"
	"github.com/ppiankov/dirsort/internal/organizer"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func tempHistory(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "history.db")
}

func TestRoot_RequiresPath(t *testing.T) {
	_, _, err := execute(t, "--no-history")
	if err == nil {
		t.Fatal("expected error without --path")
	}
	if !strings.Contains(err.Error(), "path") {
		t.Errorf("error should name the missing flag, got: %v", err)
	}
}

func TestRoot_InvalidRoot(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	_, _, err := execute(t, "--path", missing, "--no-history")
	if !errors.Is(err, organizer.ErrRootNotFound) {
		t.Fatalf("got %v, want ErrRootNotFound", err)
	}
}

func TestRoot_Organize(t *testing.T) {
	root := t.TempDir()
	writeTemp(t, root, "a.TXT", "a")
	writeTemp(t, root, "nested/b.txt", "bb")
	writeTemp(t, root, "README", "r")

	out, _, err := execute(t, "--path", root, "--no-history")
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"Scanning directory:", "Found 3 files", "Moved ", "--- Organization Complete ---", "[.txt] : 2 files"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "txt", "a.TXT")); err != nil {
		t.Errorf("a.TXT not moved: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "txt", "b.txt")); err != nil {
		t.Errorf("b.txt not moved: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "README")); err != nil {
		t.Errorf("README should stay in place: %v", err)
	}
}

func TestRoot_DryRun(t *testing.T) {
	root := t.TempDir()
	src := writeTemp(t, root, "photo.jpg", "x")

	out, _, err := execute(t, "-p", root, "-d", "--no-history")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "[DRY RUN] Would move") {
		t.Errorf("expected dry-run notice:\n%s", out)
	}
	if !strings.Contains(out, "[.jpg] : 1 files") {
		t.Errorf("dry run should count planned moves:\n%s", out)
	}
	if _, err := os.Stat(src); err != nil {
		t.Errorf("dry run must not move files: %v", err)
	}
}

func TestRoot_JSONFormat(t *testing.T) {
	root := t.TempDir()
	writeTemp(t, root, "a.md", "a")
	writeTemp(t, root, "b.md", "b")

	out, errOut, err := execute(t, "--path", root, "--format", "json", "--no-history")
	if err != nil {
		t.Fatal(err)
	}

	var res organizer.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("stdout is not a JSON document: %v\n%s", err, out)
	}
	if res.Moved != 2 || res.Counts["md"] != 2 {
		t.Errorf("unexpected result: %+v", res)
	}
	if !strings.Contains(errOut, "Moved ") {
		t.Errorf("per-file lines should go to stderr in json mode, got: %s", errOut)
	}
}

func TestRoot_TableFormat(t *testing.T) {
	root := t.TempDir()
	writeTemp(t, root, "a.csv", "a")

	out, _, err := execute(t, "--path", root, "--format", "table", "--no-history")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, ".csv") || !strings.Contains(out, "╭") {
		t.Errorf("expected rounded table with .csv row:\n%s", out)
	}
}

func TestRoot_UnknownFormat(t *testing.T) {
	_, _, err := execute(t, "--path", t.TempDir(), "--format", "xml", "--no-history")
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Fatalf("expected unknown format error, got %v", err)
	}
}

func TestRoot_Exclude(t *testing.T) {
	root := t.TempDir()
	keep := writeTemp(t, root, "scratch.tmp", "x")
	writeTemp(t, root, "a.go", "package a")

	if _, _, err := execute(t, "--path", root, "--exclude", "*.tmp", "--no-history"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(keep); err != nil {
		t.Errorf("excluded file moved: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "go", "a.go")); err != nil {
		t.Errorf("a.go not moved: %v", err)
	}
}

func TestRoot_ConfigFile(t *testing.T) {
	root := t.TempDir()
	writeTemp(t, root, "notes.log", "x")
	cfg := writeTemp(t, t.TempDir(), "dirsort.yml", "format: json\nexclude:\n  - \"*.log\"\n")

	out, _, err := execute(t, "--path", root, "--config", cfg, "--no-history")
	if err != nil {
		t.Fatal(err)
	}
	var res organizer.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("config format not applied: %v\n%s", err, out)
	}
	if res.Moved != 0 {
		t.Errorf("config exclude not applied, moved %d", res.Moved)
	}
}

func TestHistory_RecordedAndListed(t *testing.T) {
	db := tempHistory(t)
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	writeTemp(t, root, "a.txt", "a")

	if _, _, err := execute(t, "--path", root, "--history-db", db); err != nil {
		t.Fatal(err)
	}

	out, _, err := execute(t, "history", "--history-db", db)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "RUN") || !strings.Contains(out, root) {
		t.Errorf("expected run for %s in history:\n%s", root, out)
	}

	out, _, err = execute(t, "history", "list", "--root", t.TempDir(), "--history-db", db)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No recorded runs.") {
		t.Errorf("root filter should exclude other roots:\n%s", out)
	}

	out, _, err = execute(t, "history", "clear", "--history-db", db)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cleared 1 runs.") {
		t.Errorf("unexpected clear output: %s", out)
	}
}

func TestHistory_Disabled(t *testing.T) {
	db := tempHistory(t)
	root := t.TempDir()
	writeTemp(t, root, "a.txt", "a")

	if _, _, err := execute(t, "--path", root, "--history-db", db, "--no-history"); err != nil {
		t.Fatal(err)
	}
	out, _, err := execute(t, "history", "--history-db", db)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No recorded runs.") {
		t.Errorf("--no-history run was recorded:\n%s", out)
	}
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "dirsort dev") {
		t.Errorf("unexpected version output: %s", out)
	}
}

func TestOrganizeFlags_ApplySettings(t *testing.T) {
	disabled := false
	cfg := &config.Settings{Workers: 8, Format: "table", Exclude: []string{"*.part"}, History: &disabled}

	cmd := NewRootCmd()
	if err := cmd.ParseFlags([]string{"--workers", "2", "--exclude", "*.tmp"}); err != nil {
		t.Fatal(err)
	}

	f := organizeFlags{workers: 2, format: "text", exclude: []string{"*.tmp"}}
	if err := f.applySettings(cmd, cfg); err != nil {
		t.Fatal(err)
	}
	if f.workers != 2 {
		t.Errorf("explicit --workers should win, got %d", f.workers)
	}
	if f.format != "table" {
		t.Errorf("format from config expected, got %q", f.format)
	}
	if !f.noHistory {
		t.Error("history disabled in config should set noHistory")
	}
	if len(f.exclude) != 2 || f.exclude[0] != "*.part" || f.exclude[1] != "*.tmp" {
		t.Errorf("exclude should merge config and flags, got %v", f.exclude)
	}
}
