package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"

	"romtidy/internal/config"
)

func isolateXDG(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	t.Setenv("HOME", base)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(base, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(base, "state"))
	xdg.Reload()
	t.Cleanup(xdg.Reload)
	t.Chdir(base)
	return base
}

func TestLoadDefaultsWhenConfigMissing(t *testing.T) {
	base := isolateXDG(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent")
	}
	if resolved != filepath.Join(base, "config", "romtidy", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if cfg.Paths.StateDir != filepath.Join(base, "state", "romtidy") {
		t.Fatalf("unexpected state dir %q", cfg.Paths.StateDir)
	}
	if cfg.Paths.LogDir != filepath.Join(base, "state", "romtidy", "logs") {
		t.Fatalf("unexpected log dir %q", cfg.Paths.LogDir)
	}
	if cfg.Paths.TrashDir != ".trash" {
		t.Fatalf("unexpected trash dir %q", cfg.Paths.TrashDir)
	}
	if cfg.Chdman.Binary != "chdman" {
		t.Fatalf("unexpected chdman binary %q", cfg.Chdman.Binary)
	}
	if len(cfg.Chdman.ProbeArgs) == 0 {
		t.Fatal("expected default probe args")
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
}

func TestLoadParsesFileAndExpandsPaths(t *testing.T) {
	base := isolateXDG(t)
	path := filepath.Join(base, "custom.toml")
	content := `
[paths]
log_dir = "~/logs"
trash_dir = "_trash"

[chdman]
binary = "  /opt/mame/chdman "
probe_args = []

[scan]
ignore = ["*.sav", " ", "bios/**"]

[logging]
format = "JSON"
level = "DEBUG"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected explicit config to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Paths.LogDir != filepath.Join(base, "logs") {
		t.Fatalf("unexpected log dir %q", cfg.Paths.LogDir)
	}
	if cfg.Paths.TrashDir != "_trash" {
		t.Fatalf("unexpected trash dir %q", cfg.Paths.TrashDir)
	}
	if cfg.Chdman.Binary != "/opt/mame/chdman" {
		t.Fatalf("expected trimmed binary, got %q", cfg.Chdman.Binary)
	}
	if strings.Join(cfg.Chdman.ProbeArgs, " ") != "help" {
		t.Fatalf("expected default probe args, got %v", cfg.Chdman.ProbeArgs)
	}
	if len(cfg.Scan.Ignore) != 2 {
		t.Fatalf("expected blank ignore entries dropped, got %v", cfg.Scan.Ignore)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected lowercased logging settings, got %q/%q", cfg.Logging.Format, cfg.Logging.Level)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	base := isolateXDG(t)
	cases := map[string]string{
		"trash path":     "[paths]\ntrash_dir = \"a/b\"\n",
		"log format":     "[logging]\nformat = \"xml\"\n",
		"ignore pattern": "[scan]\nignore = [\"[\"]\n",
		"unknown key":    "[paths]\nstaging_dir = \"/tmp\"\n",
		"no chdman":      "[chdman]\nbinary = \"\"\nfallback_path = \"\"\nsandbox_command = []\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(base, strings.ReplaceAll(name, " ", "_")+".toml")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, _, _, err := config.Load(path); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}

func TestSampleConfigParses(t *testing.T) {
	base := isolateXDG(t)
	path := filepath.Join(base, "sample", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var decoded config.Config
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("sample config is not valid TOML: %v", err)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config failed validation: %v", err)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := isolateXDG(t)
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(base, "l")
	cfg.Paths.StateDir = filepath.Join(base, "s")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.LogDir, cfg.Paths.StateDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected %s to exist", dir)
		}
	}
	if cfg.LockDir() != filepath.Join(cfg.Paths.StateDir, "locks") {
		t.Fatalf("unexpected lock dir %q", cfg.LockDir())
	}
}
