package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// PruneRunLogs removes run logs in logDir last modified more than
// retentionDays ago. The current run's log is never removed, and a
// retentionDays of 0 disables pruning.
func PruneRunLogs(logger *slog.Logger, retentionDays int, logDir, current string) int {
	if retentionDays <= 0 || logDir == "" {
		return 0
	}
	matches, err := filepath.Glob(filepath.Join(logDir, RunLogPattern))
	if err != nil {
		return 0
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	keep := absPath(current)

	pruned := 0
	for _, path := range matches {
		if current != "" && absPath(path) == keep {
			continue
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			WarnWithContext(logger, "log retention remove failed; file remains", "log_retention_failed",
				Path("path", path),
				Error(err),
				String(FieldErrorHint, "check file permissions and log_dir ownership"),
				String(FieldImpact, "old log file remains on disk"),
			)
			continue
		}
		pruned++
		if logger != nil {
			logger.Debug("log pruned", Path("path", path), String(FieldEventType, "log_pruned"))
		}
	}
	return pruned
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
