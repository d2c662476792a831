package psar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
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

// Client wraps psar CLI interactions.
type Client struct {
	binary         string
	extractTimeout time.Duration
	packTimeout    time.Duration
	exec           services.Executor
	logger         *slog.Logger
}

// New constructs a psar client. Non-positive timeouts disable the limit.
func New(binary string, extractTimeoutSeconds, packTimeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("psar binary required")
	}
	client := &Client{
		binary:         binary,
		extractTimeout: time.Duration(extractTimeoutSeconds) * time.Second,
		packTimeout:    time.Duration(packTimeoutSeconds) * time.Second,
		exec:           services.CommandExecutor{},
		logger:         logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "psar")
	return client, nil
}

// Extract pulls ids out of archive into destDir.
func (c *Client) Extract(ctx context.Context, archive, destDir string, ids []string) error {
	if strings.TrimSpace(archive) == "" {
		return errors.New("source archive required")
	}
	if destDir == "" {
		return errors.New("destination directory required")
	}
	if len(ids) == 0 {
		return nil
	}
	args := make([]string, 0, len(ids)+4)
	args = append(args, "-yxf", archive, "-t", destDir)
	args = append(args, ids...)
	tool := services.Tool{Binary: c.binary, Args: args, Timeout: c.extractTimeout}
	if err := services.RunTool(ctx, c.exec, tool, logging.WithContext(ctx, c.logger)); err != nil {
		return fmt.Errorf("psar extract %s: %w", archive, err)
	}
	return nil
}

// Pack writes output from files, which are relative to sourceDir.
func (c *Client) Pack(ctx context.Context, output, sourceDir string, files []string) error {
	if strings.TrimSpace(output) == "" {
		return errors.New("output archive required")
	}
	if sourceDir == "" {
		return errors.New("source directory required")
	}
	if parent := filepath.Dir(output); parent != "." {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	args := make([]string, 0, len(files)+4)
	args = append(args, "-yrczf", output, "-s", sourceDir)
	args = append(args, files...)
	tool := services.Tool{Binary: c.binary, Args: args, Timeout: c.packTimeout}
	if err := services.RunTool(ctx, c.exec, tool, logging.WithContext(ctx, c.logger)); err != nil {
		return fmt.Errorf("psar pack %s: %w", output, err)
	}
	return nil
}
