package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"nmsmc/internal/deps"
	"nmsmc/internal/testsupport"
)

func TestDepsReportsStubbedTools(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"deps", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("deps: %v", err)
	}
	var statuses []deps.Status
	if err := json.Unmarshal([]byte(out), &statuses); err != nil {
		t.Fatalf("decode deps: %v\n%s", err, out)
	}
	if len(statuses) != 4 {
		t.Fatalf("expected four statuses, got %+v", statuses)
	}
	for _, s := range statuses {
		if !s.Available {
			t.Fatalf("expected %s available: %+v", s.Name, s)
		}
	}
}

func TestDepsFailsWhenToolMissing(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Tools.MBINCompiler = "nmsmc-no-such-compiler"
	configPath := testsupport.WriteConfigFile(t, env.cfg)

	out, _, err := runCLI(t, []string{"deps"}, configPath)
	if err == nil {
		t.Fatal("expected deps to fail")
	}
	requireContains(t, err.Error(), "MBINCompiler")
	requireContains(t, out, "missing")
}

func TestHistoryEmptyAndPrune(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No builds recorded")

	testsupport.WriteFile(t, filepath.Join(env.projectDir, "extras", "readme.txt"), "x\n")
	def := testsupport.WriteDefinition(t, env.projectDir, "mod.nmsmc", sampleDefinition...)
	if _, _, err := runCLI(t, []string{"build", def}, env.configPath); err != nil {
		t.Fatalf("build: %v", err)
	}

	out, _, err = runCLI(t, []string{"history", "--limit", "5"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "succeeded")
	requireContains(t, out, "mod.nmsmc")

	out, _, err = runCLI(t, []string{"history", "prune", "--older-than", "1h"}, env.configPath)
	if err != nil {
		t.Fatalf("history prune: %v", err)
	}
	requireContains(t, out, "Removed 0 build(s)")

	if _, _, err := runCLI(t, []string{"history", "--limit", "-1"}, env.configPath); err == nil {
		t.Fatal("expected negative limit to be rejected")
	}
}

func TestCleanRemovesStaleWorkDirectories(t *testing.T) {
	env := setupCLITestEnv(t)
	stale := filepath.Join(env.cfg.Paths.StagingDir, "NMSMC_stale")
	fresh := filepath.Join(env.cfg.Paths.StagingDir, "NMSMC_fresh")
	testsupport.WriteFile(t, filepath.Join(stale, "A.EXML"), "<Data/>")
	testsupport.WriteFile(t, filepath.Join(fresh, "B.EXML"), "<Data/>")
	old := time.Now().Add(-72 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	out, _, err := runCLI(t, []string{"clean", "--dry-run"}, env.configPath)
	if err != nil {
		t.Fatalf("clean --dry-run: %v", err)
	}
	requireContains(t, out, "NMSMC_stale")
	requireContains(t, out, "remove")
	requireContains(t, out, "keep")
	if _, err := os.Stat(stale); err != nil {
		t.Fatalf("dry run must not remove anything: %v", err)
	}

	out, _, err = runCLI(t, []string{"clean"}, env.configPath)
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	requireContains(t, out, "Removed 1, skipped 0 locked")
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("expected stale directory removed (err=%v)", err)
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("fresh directory should survive: %v", err)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.configPath)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	out, _, err = runCLI(t, []string{"config", "validate"}, target)
	if err != nil {
		t.Fatalf("validate sample: %v", err)
	}
	requireContains(t, out, "Configuration valid")
}

func TestConfigValidateRejectsBadLogLevel(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"--log-level", "chatty", "config", "validate"}, env.configPath); err == nil {
		t.Fatal("expected invalid --log-level to fail")
	}
}

func TestVersion(t *testing.T) {
	out, _, err := runCLI(t, []string{"version"}, "")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	requireContains(t, out, "nmsmc "+version)
}
