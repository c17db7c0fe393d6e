package testsupport

import (
	"testing"
	"time"

	"romtidy/internal/config"
	"romtidy/internal/fsops"
	"romtidy/internal/logging"
	"romtidy/internal/scan"
	"romtidy/internal/stage"
	"romtidy/internal/trash"
)

// RunStarted is the fixed start time used by NewRun.
var RunStarted = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

// NewRun builds a stage.Run over dir with a quiet logger.
func NewRun(t testing.TB, cfg *config.Config, dir string, dryRun bool) *stage.Run {
	t.Helper()

	logger := logging.NewNop()
	exec := fsops.New(dryRun, logger)
	return &stage.Run{
		ID:      "test-run",
		Started: RunStarted,
		Dir:     dir,
		DryRun:  dryRun,
		Exec:    exec,
		Trash:   trash.New(dir, cfg.Paths.TrashDir, RunStarted, exec, logger),
		Report:  stage.NewReport(),
		Logger:  logger,
		Scan:    scan.Options{TrashName: cfg.Paths.TrashDir, Ignore: cfg.Scan.Ignore},
	}
}
