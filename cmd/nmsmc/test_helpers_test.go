package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"nmsmc/internal/config"
	"nmsmc/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	projectDir string
}

// setupCLITestEnv writes a config using stub tools and moves into a fresh
// project directory where definitions and their relative paths live.
func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	t.Setenv("NMSMC_PSAR", "")
	t.Setenv("NMSMC_MBINCOMPILER", "")
	cfg := testsupport.NewConfig(t, append([]testsupport.ConfigOption{testsupport.WithStubbedBinaries()}, opts...)...)
	configPath := testsupport.WriteConfigFile(t, cfg)

	project := filepath.Join(testsupport.BaseDir(cfg), "project")
	testsupport.WriteFile(t, filepath.Join(project, ".keep"), "")
	t.Chdir(project)

	return &cliTestEnv{cfg: cfg, configPath: configPath, projectDir: project}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
