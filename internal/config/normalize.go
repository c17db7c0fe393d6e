package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeChdman()
	c.normalizeScan()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir()
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir()
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	c.Paths.TrashDir = strings.TrimSpace(c.Paths.TrashDir)
	if c.Paths.TrashDir == "" {
		c.Paths.TrashDir = defaultTrashDir
	}
	return nil
}

func (c *Config) normalizeChdman() {
	c.Chdman.Binary = strings.TrimSpace(c.Chdman.Binary)
	c.Chdman.FallbackPath = strings.TrimSpace(c.Chdman.FallbackPath)
	c.Chdman.SandboxCommand = trimList(c.Chdman.SandboxCommand)
	c.Chdman.ProbeArgs = trimList(c.Chdman.ProbeArgs)
	if len(c.Chdman.ProbeArgs) == 0 {
		c.Chdman.ProbeArgs = append([]string(nil), defaultProbeArgs...)
	}
}

func (c *Config) normalizeScan() {
	c.Scan.Ignore = trimList(c.Scan.Ignore)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

func trimList(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
