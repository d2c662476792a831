package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		c.Paths.StagingDir = defaultStagingDir
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

// normalizeTools applies environment overrides. The environment wins over the
// file so a one-off shell can point at a different build of the tools.
func (c *Config) normalizeTools() {
	if value, ok := os.LookupEnv(envPsar); ok && strings.TrimSpace(value) != "" {
		c.Tools.Psar = value
	}
	if value, ok := os.LookupEnv(envMBINCompiler); ok && strings.TrimSpace(value) != "" {
		c.Tools.MBINCompiler = value
	}
	c.Tools.Psar = strings.TrimSpace(c.Tools.Psar)
	c.Tools.MBINCompiler = strings.TrimSpace(c.Tools.MBINCompiler)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console", "pretty", "text":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
