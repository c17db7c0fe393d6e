package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateChdman(); err != nil {
		return err
	}
	if err := c.validateScan(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	name := c.Paths.TrashDir
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("paths.trash_dir must be a plain directory name, got %q", name)
	}
	return nil
}

func (c *Config) validateChdman() error {
	if c.Chdman.Binary == "" && c.Chdman.FallbackPath == "" && len(c.Chdman.SandboxCommand) == 0 {
		return errors.New("chdman: at least one of binary, fallback_path, or sandbox_command must be set")
	}
	return nil
}

func (c *Config) validateScan() error {
	for _, pattern := range c.Scan.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("scan.ignore: invalid pattern %q", pattern)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
