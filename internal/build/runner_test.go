package build_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"nmsmc/internal/build"
	"nmsmc/internal/definition"
	"nmsmc/internal/exml"
	"nmsmc/internal/history"
	"nmsmc/internal/selector"
	"nmsmc/internal/services"
)

const optionsTree = `<?xml version="1.0" encoding="utf-8"?>
<Data template="GcDebugOptions">
  <Property name="GodMode" value="False" />
  <Property name="Properties">
    <Property name="Item" value="Sword" />
  </Property>
</Data>
`

// fakeTools stands in for psar and MBINCompiler. Decompile writes the
// configured tree for every requested id.
type fakeTools struct {
	trees      map[string]string
	calls      []string
	packed     map[string][]string
	compiled   [][]string
	failOn     string
	cancelOn   string
	cancel     context.CancelFunc
	packedTree map[string]string
}

func newFakeTools() *fakeTools {
	return &fakeTools{
		trees:      map[string]string{},
		packed:     map[string][]string{},
		packedTree: map[string]string{},
	}
}

func (f *fakeTools) step(name string) error {
	f.calls = append(f.calls, name)
	if f.cancelOn == name && f.cancel != nil {
		f.cancel()
	}
	if f.failOn == name {
		return errors.New(name + " exploded")
	}
	return nil
}

func (f *fakeTools) Extract(_ context.Context, archive, _ string, ids []string) error {
	return f.step("extract " + archive + " " + strings.Join(ids, ","))
}

func (f *fakeTools) Decompile(_ context.Context, workDir string, ids []string) error {
	if err := f.step("decompile " + strings.Join(ids, ",")); err != nil {
		return err
	}
	for _, id := range ids {
		text, ok := f.trees[id]
		if !ok {
			text = optionsTree
		}
		path := filepath.Join(workDir, exml.TreeName(id))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeTools) Compile(_ context.Context, workDir string, trees []string) error {
	f.compiled = append(f.compiled, trees)
	for _, tree := range trees {
		data, err := os.ReadFile(filepath.Join(workDir, tree))
		if err != nil {
			return err
		}
		f.packedTree[tree] = string(data)
	}
	return f.step("compile " + strings.Join(trees, ","))
}

func (f *fakeTools) Pack(_ context.Context, output, _ string, files []string) error {
	f.packed[output] = files
	return f.step("pack " + output)
}

func parsePlan(t *testing.T, text string) *definition.Plan {
	t.Helper()
	plan, err := definition.ParseReader(strings.NewReader(text), "test.def", nil)
	if err != nil {
		t.Fatalf("parse plan: %v", err)
	}
	return plan
}

func TestRunPatchesAndPacksInOrder(t *testing.T) {
	work := t.TempDir()
	tools := newFakeTools()
	plan := parsePlan(t, `
!outputPakFile first.pak
!inputPakFile A.pak
!mbinFile X.MBIN
cd /
GodMode=True
!mbinFile Y.MBIN
cd /Properties/Item=[Sword]
Damage=50
!inputPakFile B.pak
!mbinFile Z.MBIN
cd /
NewFlag=1
!outputPakFile second.pak
!inputPakFile C.pak
!mbinFile W.MBIN
cd /
GodMode=True
`)

	runner := build.NewRunner(tools, tools, tools)
	summary, err := runner.Run(context.Background(), plan, work)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	wantCalls := []string{
		"extract A.pak X.MBIN,Y.MBIN",
		"decompile X.MBIN,Y.MBIN",
		"extract B.pak Z.MBIN",
		"decompile Z.MBIN",
		"compile X.EXML,Y.EXML,Z.EXML",
		"pack first.pak",
		"extract C.pak W.MBIN",
		"decompile W.MBIN",
		"compile W.EXML",
		"pack second.pak",
	}
	if diff := cmp.Diff(wantCalls, tools.calls); diff != "" {
		t.Fatalf("call order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"X.MBIN", "Y.MBIN", "Z.MBIN"}, tools.packed["first.pak"]); diff != "" {
		t.Fatalf("pack list mismatch (-want +got):\n%s", diff)
	}

	if !strings.Contains(tools.packedTree["X.EXML"], `name="GodMode" value="True"`) {
		t.Fatalf("X tree not patched:\n%s", tools.packedTree["X.EXML"])
	}
	if !strings.Contains(tools.packedTree["Y.EXML"], `name="Damage" value="50"`) {
		t.Fatalf("Y tree not patched:\n%s", tools.packedTree["Y.EXML"])
	}

	want := build.Summary{Containers: []build.ContainerSummary{
		{Output: "first.pak", Archives: 2, Documents: 3, Edits: 3, Assignments: 3, Created: 2, Updated: 1, Packed: true},
		{Output: "second.pak", Archives: 1, Documents: 1, Edits: 1, Assignments: 1, Updated: 1, Packed: true},
	}}
	if diff := cmp.Diff(want, summary); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"first.pak", "second.pak"}, summary.Outputs()); diff != "" {
		t.Fatalf("outputs mismatch (-want +got):\n%s", diff)
	}
	wantCounters := history.Counters{Containers: 2, Archives: 3, Documents: 4, Edits: 4, Created: 2, Updated: 2}
	if diff := cmp.Diff(wantCounters, summary.Counters()); diff != "" {
		t.Fatalf("counters mismatch (-want +got):\n%s", diff)
	}
}

func TestRunIsIdempotentPerDocument(t *testing.T) {
	work := t.TempDir()
	tools := newFakeTools()
	plan := parsePlan(t, `
!outputPakFile out.pak
!inputPakFile A.pak
!mbinFile X.MBIN
cd /Properties/Item=[Sword]
Damage=50
cd /Properties/Item=[Sword]
Damage=50
`)
	summary, err := build.NewRunner(tools, tools, tools).Run(context.Background(), plan, work)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	c := summary.Containers[0]
	if c.Created != 1 || c.Updated != 1 {
		t.Fatalf("expected one create then one update, got %+v", c)
	}
	if n := strings.Count(tools.packedTree["X.EXML"], `name="Damage"`); n != 1 {
		t.Fatalf("expected a single Damage node, found %d", n)
	}
}

func TestRunCountsMissesAndContinues(t *testing.T) {
	work := t.TempDir()
	tools := newFakeTools()
	plan := parsePlan(t, `
!outputPakFile out.pak
!inputPakFile A.pak
!mbinFile X.MBIN
cd /DoesNotExist
a=1
b=2
cd /
GodMode=True
`)
	summary, err := build.NewRunner(tools, tools, tools).Run(context.Background(), plan, work)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	c := summary.Containers[0]
	if c.Misses != 2 || c.Updated != 1 || !c.Packed {
		t.Fatalf("unexpected summary %+v", c)
	}
	if summary.Misses() != 2 {
		t.Fatalf("Misses() = %d, want 2", summary.Misses())
	}
}

func TestRunMatchesValuesContainingBrackets(t *testing.T) {
	work := t.TempDir()
	tools := newFakeTools()
	tools.trees["X.MBIN"] = `<?xml version="1.0" encoding="utf-8"?>
<Data template="GcDebugOptions">
  <Property name="Properties">
    <Property name="Item" value="Sword[Damage]" />
    <Property name="Item" value="Bow[" />
  </Property>
</Data>
`
	plan := parsePlan(t, `
!outputPakFile out.pak
!inputPakFile A.pak
!mbinFile X.MBIN
cd /Properties/Item=Sword[Damage]
Damage=50
cd /Properties/Item=[Bow[]
Range=9
`)
	summary, err := build.NewRunner(tools, tools, tools).Run(context.Background(), plan, work)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	c := summary.Containers[0]
	if c.Misses != 0 || c.Created != 2 {
		t.Fatalf("unexpected summary %+v", c)
	}
	tree := tools.packedTree["X.EXML"]
	for _, want := range []string{`name="Damage" value="50"`, `name="Range" value="9"`} {
		if !strings.Contains(tree, want) {
			t.Fatalf("tree missing %s:\n%s", want, tree)
		}
	}
}

func TestRunGrammarErrorIsFatal(t *testing.T) {
	work := t.TempDir()
	tools := newFakeTools()
	plan := parsePlan(t, `
!outputPakFile out.pak
!inputPakFile A.pak
!mbinFile X.MBIN
cd /Properties/Item=[Sword
Damage=50
`)
	_, err := build.NewRunner(tools, tools, tools).Run(context.Background(), plan, work)
	if !errors.Is(err, selector.ErrUnterminatedBracket) {
		t.Fatalf("expected grammar error, got %v", err)
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
	for _, call := range tools.calls {
		if strings.HasPrefix(call, "pack") || strings.HasPrefix(call, "compile") {
			t.Fatalf("run continued after grammar error: %v", tools.calls)
		}
	}
}

func TestRunToolFailureStopsBeforeLaterContainers(t *testing.T) {
	work := t.TempDir()
	tools := newFakeTools()
	tools.failOn = "pack first.pak"
	plan := parsePlan(t, `
!outputPakFile first.pak
!inputPakFile A.pak
!mbinFile X.MBIN
!outputPakFile second.pak
!inputPakFile B.pak
!mbinFile Y.MBIN
`)
	summary, err := build.NewRunner(tools, tools, tools).Run(context.Background(), plan, work)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if !strings.Contains(err.Error(), "first.pak") {
		t.Fatalf("error does not name the failing unit: %v", err)
	}
	for _, call := range tools.calls {
		if strings.Contains(call, "B.pak") {
			t.Fatalf("second container was processed: %v", tools.calls)
		}
	}
	if len(summary.Containers) != 1 || summary.Containers[0].Packed {
		t.Fatalf("unexpected partial summary %+v", summary)
	}
	if got := services.FailureStatus(err); got != history.StatusFailed {
		t.Fatalf("FailureStatus = %q, want failed", got)
	}
}

func TestRunExtractFailureNamesArchive(t *testing.T) {
	tools := newFakeTools()
	tools.failOn = "extract A.pak X.MBIN"
	plan := parsePlan(t, "!outputPakFile o.pak\n!inputPakFile A.pak\n!mbinFile X.MBIN\n")
	_, err := build.NewRunner(tools, tools, tools).Run(context.Background(), plan, t.TempDir())
	if !errors.Is(err, services.ErrExternalTool) || !strings.Contains(err.Error(), "A.pak") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestRunStagesExtraFilesInDeclaredOrder(t *testing.T) {
	src := t.TempDir()
	work := t.TempDir()
	t.Chdir(src)
	for _, name := range []string{"b.txt", filepath.Join("TEXTURES", "a.dds")} {
		if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(name, []byte(name), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	tools := newFakeTools()
	plan := parsePlan(t, `
!outputPakFile out.pak
!addFile b.txt
!inputPakFile A.pak
!mbinFile X.MBIN
!addFile TEXTURES/a.dds
`)
	if _, err := build.NewRunner(tools, tools, tools).Run(context.Background(), plan, work); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if diff := cmp.Diff([]string{"X.MBIN", "b.txt", "TEXTURES/a.dds"}, tools.packed["out.pak"]); diff != "" {
		t.Fatalf("pack list mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(filepath.Join(work, "TEXTURES", "a.dds")); err != nil {
		t.Fatalf("extra file not staged: %v", err)
	}
}

func TestRunExtraFilesOnlyContainerSkipsCompile(t *testing.T) {
	src := t.TempDir()
	t.Chdir(src)
	if err := os.WriteFile("readme.txt", []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	tools := newFakeTools()
	plan := parsePlan(t, "!outputPakFile out.pak\n!addFile readme.txt\n")
	if _, err := build.NewRunner(tools, tools, tools).Run(context.Background(), plan, t.TempDir()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if diff := cmp.Diff([]string{"pack out.pak"}, tools.calls); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestRunRejectsBadExtraFiles(t *testing.T) {
	t.Chdir(t.TempDir())
	tools := newFakeTools()

	_, err := build.NewRunner(tools, tools, tools).Run(context.Background(), parsePlan(t, "!outputPakFile o.pak\n!addFile missing.txt\n"), t.TempDir())
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}

	_, err = build.NewRunner(tools, tools, tools).Run(context.Background(), parsePlan(t, "!outputPakFile o.pak\n!addFile ../outside.txt\n"), t.TempDir())
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRunStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tools := newFakeTools()
	tools.cancelOn = "pack first.pak"
	tools.cancel = cancel
	plan := parsePlan(t, "!outputPakFile first.pak\n!outputPakFile second.pak\n")

	_, err := build.NewRunner(tools, tools, tools).Run(ctx, plan, t.TempDir())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if diff := cmp.Diff([]string{"pack first.pak"}, tools.calls); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestRunWritesDiffPreview(t *testing.T) {
	tools := newFakeTools()
	var out bytes.Buffer
	plan := parsePlan(t, "!outputPakFile o.pak\n!inputPakFile A.pak\n!mbinFile X.MBIN\ncd /\nGodMode=True\n")
	runner := build.NewRunner(tools, tools, tools, build.WithDiff(&out, false))
	if _, err := runner.Run(context.Background(), plan, t.TempDir()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	text := out.String()
	for _, fragment := range []string{
		"--- X.MBIN",
		`-  <Property name="GodMode" value="False"/>`,
		`+  <Property name="GodMode" value="True"/>`,
	} {
		if !strings.Contains(text, fragment) {
			t.Fatalf("diff missing %q:\n%s", fragment, text)
		}
	}
	if strings.Contains(text, "\x1b[") {
		t.Fatalf("uncolored diff contains escape codes:\n%s", text)
	}
}

func TestRunNilPlan(t *testing.T) {
	tools := newFakeTools()
	summary, err := build.NewRunner(tools, tools, tools).Run(context.Background(), nil, t.TempDir())
	if err != nil || len(summary.Containers) != 0 {
		t.Fatalf("expected empty run, got %+v %v", summary, err)
	}
}
