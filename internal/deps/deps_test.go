package deps_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nmsmc/internal/config"
	"nmsmc/internal/deps"
)

func TestCheckBinaries(t *testing.T) {
	statuses := deps.CheckBinaries([]deps.Requirement{
		{Name: "shell", Command: "sh"},
		{Name: "ghost", Command: "nmsmc-definitely-missing-binary"},
		{Name: "blank", Command: "  ", Optional: true},
	})
	if len(statuses) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(statuses))
	}
	if !statuses[0].Available {
		t.Fatalf("expected sh to be available: %+v", statuses[0])
	}
	if !filepath.IsAbs(statuses[0].Detail) {
		t.Fatalf("expected resolved path in detail, got %q", statuses[0].Detail)
	}
	if statuses[1].Available || !strings.Contains(statuses[1].Detail, "not found") {
		t.Fatalf("unexpected status for missing binary: %+v", statuses[1])
	}
	if statuses[2].Available || statuses[2].Detail != "command not configured" {
		t.Fatalf("unexpected status for blank command: %+v", statuses[2])
	}

	missing := deps.Missing(statuses)
	if len(missing) != 1 || missing[0].Name != "ghost" {
		t.Fatalf("expected only the required missing binary, got %+v", missing)
	}
}

func TestCheckDirectory(t *testing.T) {
	root := t.TempDir()

	existing := deps.CheckDirectory("staging_dir", root, "")
	if !existing.Available || existing.Detail != "" {
		t.Fatalf("unexpected status for existing dir: %+v", existing)
	}

	nested := filepath.Join(root, "a", "b")
	pending := deps.CheckDirectory("staging_dir", nested, "")
	if !pending.Available {
		t.Fatalf("expected missing dir under writable parent to pass: %+v", pending)
	}
	if !strings.Contains(pending.Detail, root) {
		t.Fatalf("expected detail to name the existing ancestor, got %q", pending.Detail)
	}
	if _, err := os.Stat(nested); !os.IsNotExist(err) {
		t.Fatalf("check must not create the directory, stat err = %v", err)
	}

	file := filepath.Join(root, "plain")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	notDir := deps.CheckDirectory("staging_dir", file, "")
	if notDir.Available || !strings.Contains(notDir.Detail, "not a directory") {
		t.Fatalf("unexpected status for file path: %+v", notDir)
	}

	if empty := deps.CheckDirectory("state_dir", "", ""); empty.Available {
		t.Fatalf("expected empty path to fail: %+v", empty)
	}
}

func TestCheckSystem(t *testing.T) {
	cfg := config.Default()
	cfg.Tools.Psar = "sh"
	cfg.Tools.MBINCompiler = "nmsmc-definitely-missing-binary"
	cfg.Paths.StagingDir = filepath.Join(t.TempDir(), "staging")
	cfg.Paths.StateDir = t.TempDir()

	statuses := deps.CheckSystem(&cfg)
	var names []string
	for _, s := range statuses {
		names = append(names, s.Name)
	}
	want := "psar,MBINCompiler,staging_dir,state_dir"
	if got := strings.Join(names, ","); got != want {
		t.Fatalf("unexpected order: got %s want %s", got, want)
	}

	missing := deps.Missing(statuses)
	if len(missing) != 1 || missing[0].Name != "MBINCompiler" {
		t.Fatalf("expected MBINCompiler missing, got %+v", missing)
	}
	if deps.CheckSystem(nil) != nil {
		t.Fatal("expected nil config to yield no statuses")
	}
}
