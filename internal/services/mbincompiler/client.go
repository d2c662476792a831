package mbincompiler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"nmsmc/internal/logging"
	"nmsmc/internal/services"
)

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec services.Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithLogger sets the logger that receives tool output at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client wraps MBINCompiler CLI interactions.
type Client struct {
	binary  string
	timeout time.Duration
	exec    services.Executor
	logger  *slog.Logger
}

// New constructs an MBINCompiler client. A non-positive timeout disables the
// limit.
func New(binary string, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("MBINCompiler binary required")
	}
	client := &Client{
		binary:  binary,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		exec:    services.CommandExecutor{},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "mbincompiler")
	return client, nil
}

// Decompile converts the binary documents ids, relative to workDir, into
// text trees beside them.
func (c *Client) Decompile(ctx context.Context, workDir string, ids []string) error {
	if err := c.run(ctx, workDir, []string{"-y", "-q", "--no-version"}, ids); err != nil {
		return fmt.Errorf("decompile: %w", err)
	}
	return nil
}

// Compile converts the text trees, relative to workDir, back to binary form.
func (c *Client) Compile(ctx context.Context, workDir string, trees []string) error {
	if err := c.run(ctx, workDir, []string{"-y", "-q"}, trees); err != nil {
		return fmt.Errorf("compile: %w", err)
	}
	return nil
}

func (c *Client) run(ctx context.Context, workDir string, flags, files []string) error {
	if workDir == "" {
		return errors.New("work directory required")
	}
	if len(files) == 0 {
		return nil
	}
	args := make([]string, 0, len(flags)+len(files))
	args = append(args, flags...)
	args = append(args, files...)
	tool := services.Tool{Binary: c.binary, Dir: workDir, Args: args, Timeout: c.timeout}
	return services.RunTool(ctx, c.exec, tool, logging.WithContext(ctx, c.logger))
}
