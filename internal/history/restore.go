package history

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"romtidy/internal/fsops"
	"romtidy/internal/logging"
)

// RestoreResult summarizes a restore pass.
type RestoreResult struct {
	Restored int
	Skipped  int
	Failed   int
}

// Restore moves a run's relocations back to their original paths, newest
// first so directories come back before the files that lived in them.
// Entries whose trash copy is gone or whose original path is occupied are
// skipped.
func Restore(ctx context.Context, store *Store, runID string, exec fsops.Executor, logger *slog.Logger) (RestoreResult, error) {
	logger = logging.NewComponentLogger(logger, "restore")
	var result RestoreResult

	relocations, err := store.Relocations(ctx, runID)
	if err != nil {
		return result, err
	}
	for i := len(relocations) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		rel := relocations[i]
		if rel.RestoredAt != nil {
			result.Skipped++
			continue
		}
		if !fsops.Exists(rel.Destination) {
			logger.Warn("trash entry missing; not restored",
				logging.Path("path", rel.Destination),
				logging.String(logging.FieldEventType, "restore_missing"),
				logging.String(logging.FieldImpact, "file was purged or moved by hand"),
			)
			result.Skipped++
			continue
		}
		if fsops.Exists(rel.Source) {
			logger.Warn("original path occupied; not restored",
				logging.Path("path", rel.Source),
				logging.String(logging.FieldEventType, "restore_conflict"),
				logging.String(logging.FieldErrorHint, "move the occupying file away and rerun restore"),
			)
			result.Skipped++
			continue
		}
		if err := exec.MkdirAll(ctx, filepath.Dir(rel.Source)); err != nil {
			result.Failed++
			continue
		}
		if err := exec.Move(ctx, rel.Destination, rel.Source); err != nil {
			logger.Warn("restore move failed",
				logging.Path("path", rel.Source),
				logging.Error(err),
				logging.String(logging.FieldEventType, "restore_failed"),
			)
			result.Failed++
			continue
		}
		if exec.DryRun() {
			result.Restored++
			continue
		}
		if err := store.MarkRestored(ctx, rel.ID); err != nil {
			return result, fmt.Errorf("restore %s: %w", rel.Source, err)
		}
		result.Restored++
	}
	if !exec.DryRun() {
		pruneEmptyRunDirs(ctx, exec, relocations)
	}
	return result, nil
}

// pruneEmptyRunDirs removes per-run trash directories emptied by a restore.
func pruneEmptyRunDirs(ctx context.Context, exec fsops.Executor, relocations []Relocation) {
	seen := make(map[string]struct{})
	for _, rel := range relocations {
		dir := filepath.Dir(rel.Destination)
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
			_ = exec.RemoveEmptyDir(ctx, dir)
		}
	}
}
