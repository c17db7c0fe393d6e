package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	defaultTrashDir         = ".trash"
	defaultChdmanBinary     = "chdman"
	defaultChdmanFallback   = "/usr/lib/mame/chdman"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30
)

var (
	defaultSandboxCommand = []string{"flatpak", "run", "--command=chdman", "org.mamedev.MAME"}
	defaultProbeArgs      = []string{"help"}
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir(),
			StateDir: defaultStateDir(),
			TrashDir: defaultTrashDir,
		},
		Chdman: Chdman{
			Binary:         defaultChdmanBinary,
			FallbackPath:   defaultChdmanFallback,
			SandboxCommand: append([]string(nil), defaultSandboxCommand...),
			ProbeArgs:      append([]string(nil), defaultProbeArgs...),
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}

func defaultStateDir() string {
	return filepath.Join(xdg.StateHome, "romtidy")
}

func defaultLogDir() string {
	return filepath.Join(xdg.StateHome, "romtidy", "logs")
}
