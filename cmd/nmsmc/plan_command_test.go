package main

import (
	"encoding/json"
	"strings"
	"testing"

	"nmsmc/internal/definition"
	"nmsmc/internal/testsupport"
)

func TestPlanPrintsTable(t *testing.T) {
	env := setupCLITestEnv(t)
	def := testsupport.WriteDefinition(t, env.projectDir, "mod.nmsmc", sampleDefinition...)

	out, _, err := runCLI(t, []string{"plan", def}, "")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	requireContains(t, out, "GCDEBUGOPTIONS.GLOBAL.MBIN")
	requireContains(t, out, "NMSARC.test.pak")
	requireContains(t, out, "(extra file)")
	requireContains(t, out, "1 output(s), 1 archive(s), 1 document(s), 3 edit(s), 3 assignment(s), 1 extra file(s)")
}

func TestPlanJSONMergesDefinitionsInOrder(t *testing.T) {
	env := setupCLITestEnv(t)
	first := testsupport.WriteDefinition(t, env.projectDir, "a.nmsmc",
		"!outputPakFile first.pak",
		"!inputPakFile A.pak",
		"!mbinFile A.MBIN",
		"cd /",
		"X=1",
	)
	second := testsupport.WriteDefinition(t, env.projectDir, "b.nmsmc",
		"!outputPakFile second.pak",
		"!addFile notes.txt",
	)

	out, _, err := runCLI(t, []string{"plan", "--json", first, second}, "")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	var payload struct {
		Plan  definition.Plan  `json:"plan"`
		Stats definition.Stats `json:"stats"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode plan: %v\n%s", err, out)
	}
	if len(payload.Plan.Containers) != 2 {
		t.Fatalf("expected two containers, got %d", len(payload.Plan.Containers))
	}
	if payload.Plan.Containers[0].Output != "first.pak" || payload.Plan.Containers[1].Output != "second.pak" {
		t.Fatalf("unexpected container order: %+v", payload.Plan.Containers)
	}
	if payload.Stats.Assignments != 1 || payload.Stats.ExtraFiles != 1 {
		t.Fatalf("unexpected stats: %+v", payload.Stats)
	}
}

func TestPlanDoesNotNeedConfigOrTools(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	def := testsupport.WriteDefinition(t, dir, "mod.nmsmc", "!outputPakFile out.pak")

	out, _, err := runCLI(t, []string{"plan", def}, dir+"/missing.toml")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if !strings.Contains(out, "1 output(s)") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestPlanReportsParseErrors(t *testing.T) {
	env := setupCLITestEnv(t)
	def := testsupport.WriteDefinition(t, env.projectDir, "bad.nmsmc", "Speed=5")

	_, _, err := runCLI(t, []string{"plan", def}, "")
	if err == nil {
		t.Fatal("expected parse error")
	}
	requireContains(t, err.Error(), `expected "cd", but got an assignment`)
}
