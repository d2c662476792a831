package psar_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"nmsmc/internal/services"
	"nmsmc/internal/services/psar"
)

type stubExecutor struct {
	lines []string
	err   error
	wait  bool
	calls int
	dirs  []string
	args  [][]string
}

func (s *stubExecutor) Run(ctx context.Context, dir, binary string, args []string, onLine func(string)) error {
	s.calls++
	s.dirs = append(s.dirs, dir)
	s.args = append(s.args, append([]string{binary}, args...))
	for _, line := range s.lines {
		onLine(line)
	}
	if s.wait {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.err
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := psar.New("  ", 1, 1); err == nil {
		t.Fatal("expected error for empty binary")
	}
}

func TestExtractArguments(t *testing.T) {
	exec := &stubExecutor{}
	client, err := psar.New("psar", 5, 5, psar.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := client.Extract(context.Background(), "NMSARC.pak", "/tmp/work", []string{"A.MBIN", "DIR/B.MBIN"}); err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	want := [][]string{{"psar", "-yxf", "NMSARC.pak", "-t", "/tmp/work", "A.MBIN", "DIR/B.MBIN"}}
	if diff := cmp.Diff(want, exec.args); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
	if exec.dirs[0] != "" {
		t.Fatalf("extract should run in the caller's directory, got %q", exec.dirs[0])
	}
}

func TestExtractWithoutIDsIsNoop(t *testing.T) {
	exec := &stubExecutor{}
	client, _ := psar.New("psar", 5, 5, psar.WithExecutor(exec))
	if err := client.Extract(context.Background(), "NMSARC.pak", "/tmp/work", nil); err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if exec.calls != 0 {
		t.Fatalf("expected no tool invocation, got %d", exec.calls)
	}
}

func TestPackArgumentsAndOutputDirectory(t *testing.T) {
	exec := &stubExecutor{}
	client, _ := psar.New("/opt/psar", 5, 5, psar.WithExecutor(exec))
	output := filepath.Join(t.TempDir(), "mods", "out.pak")
	files := []string{"A.MBIN", "readme.txt"}
	if err := client.Pack(context.Background(), output, "/tmp/work", files); err != nil {
		t.Fatalf("Pack returned error: %v", err)
	}
	want := [][]string{{"/opt/psar", "-yrczf", output, "-s", "/tmp/work", "A.MBIN", "readme.txt"}}
	if diff := cmp.Diff(want, exec.args); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
	if info, err := os.Stat(filepath.Dir(output)); err != nil || !info.IsDir() {
		t.Fatalf("expected output directory to be created: %v", err)
	}
}

func TestFailureIncludesOutputTail(t *testing.T) {
	exec := &stubExecutor{lines: []string{"opening archive", "error: bad header"}, err: errors.New("exit status 2")}
	client, _ := psar.New("psar", 5, 5, psar.WithExecutor(exec))
	err := client.Extract(context.Background(), "broken.pak", "/tmp/work", []string{"A.MBIN"})
	if err == nil {
		t.Fatal("expected error")
	}
	for _, fragment := range []string{"broken.pak", "exit status 2", "bad header"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("error %q missing %q", err.Error(), fragment)
		}
	}
}

func TestTimeoutIsReported(t *testing.T) {
	exec := &stubExecutor{wait: true}
	client, _ := psar.New("psar", 1, 1, psar.WithExecutor(exec))
	err := client.Pack(context.Background(), "out.pak", "/tmp/work", nil)
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
}
