// Package flatten removes one level of wrapper directories left behind by
// extraction. It makes a single pass; deeper chains stay partially nested.
package flatten

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"romtidy/internal/fsops"
	"romtidy/internal/logging"
	"romtidy/internal/services"
	"romtidy/internal/stage"
)

// StageName labels flattening in logs and summaries.
const StageName = "flatten"

// Stage flattens single-child wrapper directories and trashes empty ones.
type Stage struct {
	logger *slog.Logger
}

// NewStage constructs the flattening stage.
func NewStage(logger *slog.Logger) *Stage {
	return &Stage{logger: logging.NewComponentLogger(logger, StageName)}
}

func (s *Stage) Name() string { return StageName }

func (s *Stage) HealthCheck(context.Context) stage.Health { return stage.Healthy(StageName) }

// Execute runs one flatten pass over the top-level directories followed by
// relocation of empty top-level directories.
func (s *Stage) Execute(ctx context.Context, run *stage.Run) error {
	entries, err := run.List()
	if err != nil {
		return services.Wrap(services.ErrValidation, StageName, "list target", run.Dir, err)
	}
	logger := logging.WithContext(ctx, s.logger)

	flattened := 0
	for _, entry := range entries {
		if !entry.IsDir {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		ok, err := s.flattenOne(ctx, run, entry.Path)
		if err != nil {
			run.Warn(ctx, entry.Path, "flatten failed", "flatten_failed",
				services.Wrap(services.ErrFilesystem, StageName, "flatten", entry.Name, err),
				logging.String(logging.FieldErrorHint, "move the nested files up manually"),
				logging.String(logging.FieldImpact, "directory left nested"),
			)
			continue
		}
		if ok {
			flattened++
		}
	}

	relocated := s.relocateEmpty(ctx, run)
	logger.Info("flatten finished",
		logging.Int("flattened", flattened),
		logging.Int("empty_relocated", relocated),
		logging.String(logging.FieldEventType, "flatten_complete"),
	)
	return nil
}

// flattenOne lifts the children of dir's single inner directory into dir.
func (s *Stage) flattenOne(ctx context.Context, run *stage.Run, dir string) (bool, error) {
	children, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}
	if len(children) != 1 || !children[0].IsDir() {
		return false, nil
	}
	innerName := children[0].Name()
	inner := filepath.Join(dir, innerName)
	grandchildren, err := os.ReadDir(inner)
	if err != nil {
		return false, err
	}

	// A grandchild sharing the inner directory's name cannot be moved up
	// until the inner directory is out of the way, so park the inner
	// directory under a temporary name first.
	source := inner
	for _, gc := range grandchildren {
		if gc.Name() == innerName {
			parked, err := parkingName(dir, innerName)
			if err != nil {
				return false, err
			}
			if err := run.Exec.Move(ctx, inner, parked); err != nil {
				return false, err
			}
			source = parked
			break
		}
	}

	for _, gc := range grandchildren {
		if err := run.Exec.Move(ctx, filepath.Join(source, gc.Name()), filepath.Join(dir, gc.Name())); err != nil {
			return false, err
		}
	}
	if err := run.Exec.RemoveEmptyDir(ctx, source); err != nil {
		return false, err
	}
	return true, nil
}

func parkingName(dir, name string) (string, error) {
	for i := 0; i < 100; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf(".%s.flatten-%d", name, i))
		if !fsops.Exists(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free temporary name for %s", name)
}

func (s *Stage) relocateEmpty(ctx context.Context, run *stage.Run) int {
	// Under dry-run nothing moved, so emptiness is judged on the live tree.
	entries, err := run.List()
	if err != nil {
		run.Warn(ctx, run.Dir, "list target failed", "flatten_list_failed", err)
		return 0
	}
	relocated := 0
	for _, entry := range entries {
		if !entry.IsDir {
			continue
		}
		children, err := os.ReadDir(entry.Path)
		if err != nil || len(children) > 0 {
			continue
		}
		if run.Relocate(ctx, entry.Path) {
			relocated++
		}
	}
	return relocated
}
