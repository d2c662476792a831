package services

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, dir, binary string, args []string, onLine func(string)) error
}

// maxOutputLine bounds a single line of tool output.
const maxOutputLine = 1 << 20

// CommandExecutor runs binaries with os/exec, forwarding stdout and stderr
// line by line.
type CommandExecutor struct{}

// Run starts binary in dir and waits for it to exit.
func (CommandExecutor) Run(ctx context.Context, dir, binary string, args []string, onLine func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.Dir = dir
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var scanErr error
	var once sync.Once

	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxOutputLine)
		for scanner.Scan() {
			if onLine == nil {
				continue
			}
			mu.Lock()
			onLine(scanner.Text())
			mu.Unlock()
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
		}
	}

	wg.Add(2)
	go scan(stdout)
	go scan(stderr)

	wg.Wait()
	if scanErr != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return fmt.Errorf("scan output: %w", scanErr)
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}

// Tool describes one invocation of an external binary.
type Tool struct {
	Binary  string
	Dir     string
	Args    []string
	Timeout time.Duration
}

const outputTailLines = 20

// RunTool executes the tool through exec, logging its output at debug level
// and attaching the last lines of output to any failure. A deadline overrun is
// reported as ErrTimeout.
func RunTool(ctx context.Context, executor Executor, tool Tool, logger *slog.Logger) error {
	if executor == nil {
		executor = CommandExecutor{}
	}
	runCtx := ctx
	if tool.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, tool.Timeout)
		defer cancel()
	}

	tail := make([]string, 0, outputTailLines)
	onLine := func(line string) {
		line = strings.TrimRight(line, "\r")
		if logger != nil {
			logger.Debug("tool output", slog.String("tool", tool.Binary), slog.String("line", line))
		}
		if len(tail) == outputTailLines {
			tail = tail[1:]
		}
		tail = append(tail, line)
	}

	started := time.Now()
	err := executor.Run(runCtx, tool.Dir, tool.Binary, tool.Args, onLine)
	if logger != nil {
		logger.Debug("tool finished",
			slog.String("tool", tool.Binary),
			slog.Int("args", len(tool.Args)),
			slog.Duration("elapsed", time.Since(started)),
			slog.Bool("ok", err == nil),
		)
	}
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("%w after %s: %w", ErrTimeout, tool.Timeout, err)
	}
	if len(tail) > 0 {
		return fmt.Errorf("%s: %w (output: %s)", tool.Binary, err, strings.Join(tail, " | "))
	}
	return fmt.Errorf("%s: %w", tool.Binary, err)
}
