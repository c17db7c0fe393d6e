package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"romtidy/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The chdman chain points at names that do not exist so conversion is
// unavailable unless a stub is installed.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Chdman.Binary = "romtidy-test-chdman"
	cfgVal.Chdman.FallbackPath = filepath.Join(base, "missing", "chdman")
	cfgVal.Chdman.SandboxCommand = nil
	cfgVal.Logging.Level = "debug"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithIgnore sets scan ignore patterns on the test config.
func WithIgnore(patterns ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scan.Ignore = patterns
	}
}

// WithHistory toggles the relocation journal.
func WithHistory(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = enabled
	}
}

// ChdmanBehavior selects what the stub chdman does on createcd.
type ChdmanBehavior string

const (
	// ChdmanSucceeds writes the output file and exits 0.
	ChdmanSucceeds ChdmanBehavior = "succeed"
	// ChdmanFails exits 1 without output.
	ChdmanFails ChdmanBehavior = "fail"
	// ChdmanLies exits 0 without writing output.
	ChdmanLies ChdmanBehavior = "lie"
	// ChdmanPartial writes a partial output file and exits 1.
	ChdmanPartial ChdmanBehavior = "partial"
)

// WithStubChdman installs a stub chdman with the requested behavior on PATH
// and points the config at it.
func WithStubChdman(behavior ChdmanBehavior) ConfigOption {
	return func(b *configBuilder) {
		script := "#!/bin/sh\n" +
			"if [ \"$1\" = \"help\" ]; then echo \"chdman - MAME Compressed Hunks of Data (CHD) manager\"; exit 0; fi\n" +
			"out=\"\"\n" +
			"while [ $# -gt 0 ]; do\n" +
			"  if [ \"$1\" = \"-o\" ]; then shift; out=\"$1\"; fi\n" +
			"  shift\n" +
			"done\n"
		switch behavior {
		case ChdmanFails:
			script += "echo \"Error: file not found\" >&2\nexit 1\n"
		case ChdmanLies:
			script += "exit 0\n"
		case ChdmanPartial:
			script += "printf 'MComprHD' > \"$out\"\nexit 1\n"
		default:
			script += "echo \"Compressing, 100.0% complete...\" >&2\nprintf 'MComprHD' > \"$out\"\nexit 0\n"
		}
		writeStub(b, "chdman", script)
		b.cfg.Chdman.Binary = "chdman"
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, a succeeding chdman is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			WithStubChdman(ChdmanSucceeds)(b)
			return
		}
		for _, name := range names {
			writeStub(b, name, "#!/bin/sh\nexit 0\n")
		}
	}
}

func writeStub(b *configBuilder, name, script string) {
	binDir := filepath.Join(b.baseDir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		b.t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(binDir, name)
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		b.t.Fatalf("write stub %s: %v", name, err)
	}

	oldPath := os.Getenv("PATH")
	if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
		b.t.Fatalf("set PATH: %v", err)
	}
	b.t.Cleanup(func() {
		_ = os.Setenv("PATH", oldPath)
	})
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
