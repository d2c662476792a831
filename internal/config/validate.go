package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var validLogLevels = []string{"debug", "info", "warn", "warning", "error"}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validateBuild(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		return errors.New("paths.staging_dir must be set")
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateTools() error {
	if c.Tools.Psar == "" {
		return fmt.Errorf("tools.psar must be set (or export %s)", envPsar)
	}
	if c.Tools.MBINCompiler == "" {
		return fmt.Errorf("tools.mbincompiler must be set (or export %s)", envMBINCompiler)
	}
	return ensurePositive([]namedValue{
		{"tools.extract_timeout", c.Tools.ExtractTimeout},
		{"tools.compile_timeout", c.Tools.CompileTimeout},
		{"tools.pack_timeout", c.Tools.PackTimeout},
	})
}

func (c *Config) validateBuild() error {
	if c.Build.Indent < 0 {
		return errors.New("build.indent must be zero or positive")
	}
	if c.Build.StaleAfterHours <= 0 {
		return errors.New("build.stale_after_hours must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !slices.Contains(validLogLevels, c.Logging.Level) {
		return fmt.Errorf("logging.level %q is not one of %s", c.Logging.Level, strings.Join(validLogLevels, ", "))
	}
	return nil
}

type namedValue struct {
	key   string
	value int
}

// ensurePositive reports the first non-positive entry in declaration order so
// the error is stable across runs.
func ensurePositive(values []namedValue) error {
	for _, v := range values {
		if v.value <= 0 {
			return fmt.Errorf("%s must be positive", v.key)
		}
	}
	return nil
}
