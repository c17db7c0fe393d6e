package fsops

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"romtidy/internal/fileutil"
	"romtidy/internal/logging"
)

// ErrExists is returned when an effect would overwrite an existing path.
var ErrExists = errors.New("destination already exists")

// Action describes an effect that cannot be expressed as a plain filesystem
// primitive, such as extracting an archive or invoking an external tool.
type Action struct {
	// Description is logged identically by both executors.
	Description string
	Attrs       []logging.Attr
	Apply       func(context.Context) error
}

// Executor applies (or, in dry-run mode, describes) effects.
type Executor interface {
	// DryRun reports whether effects are only described.
	DryRun() bool
	// Move renames src to dst. It never overwrites an existing dst.
	Move(ctx context.Context, src, dst string) error
	// MkdirAll creates path and any missing parents.
	MkdirAll(ctx context.Context, path string) error
	// WriteFile creates path with data. It never overwrites an existing file.
	WriteFile(ctx context.Context, path string, data []byte) error
	// RemoveEmptyDir removes path, which must be an empty directory.
	RemoveEmptyDir(ctx context.Context, path string) error
	// RemoveAll deletes path recursively. Only the confirmed trash purge uses it.
	RemoveAll(ctx context.Context, path string) error
	// Run applies action. applied is false when the action was only described.
	Run(ctx context.Context, action Action) (applied bool, err error)
}

// New returns the executor for the requested mode.
func New(dryRun bool, logger *slog.Logger) Executor {
	logger = logging.NewComponentLogger(logger, "fsops")
	if dryRun {
		return &planExecutor{logger: logger}
	}
	return &realExecutor{logger: logger}
}

func describe(ctx context.Context, logger *slog.Logger, dry bool, msg string, attrs ...logging.Attr) {
	if dry {
		attrs = append(attrs, logging.DryRun())
	}
	logging.WithContext(ctx, logger).Info(msg, logging.Args(attrs...)...)
}

type realExecutor struct {
	logger *slog.Logger
}

func (e *realExecutor) DryRun() bool { return false }

func (e *realExecutor) Move(ctx context.Context, src, dst string) error {
	describe(ctx, e.logger, false, "move", logging.Path("from", src), logging.Path("to", dst))
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("move %s: %w: %s", src, ErrExists, dst)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("move %s: stat destination: %w", src, err)
	}
	if err := os.Rename(src, dst); err != nil {
		var linkErr *os.LinkError
		if errors.As(err, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
			return moveAcrossDevices(src, dst)
		}
		return fmt.Errorf("move %s: %w", src, err)
	}
	return nil
}

func moveAcrossDevices(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return fmt.Errorf("move %s: %w", src, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("move %s: cross-device move of non-regular file not supported", src)
	}
	if err := fileutil.CopyNew(src, dst, info.Mode().Perm()); err != nil {
		return fmt.Errorf("move %s: copy across devices: %w", src, err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("move %s: remove source after copy: %w", src, err)
	}
	return nil
}

func (e *realExecutor) MkdirAll(ctx context.Context, path string) error {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return nil
	}
	describe(ctx, e.logger, false, "create directory", logging.Path("path", path))
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", path, err)
	}
	return nil
}

func (e *realExecutor) WriteFile(ctx context.Context, path string, data []byte) error {
	describe(ctx, e.logger, false, "write file", logging.Path("path", path), logging.Int("bytes", len(data)))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("write %s: %w", path, ErrExists)
		}
		return fmt.Errorf("write %s: %w", path, err)
	}
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (e *realExecutor) RemoveEmptyDir(ctx context.Context, path string) error {
	describe(ctx, e.logger, false, "remove empty directory", logging.Path("path", path))
	info, err := os.Lstat(path)
	if err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("remove %s: not a directory", path)
	}
	// os.Remove refuses non-empty directories.
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

func (e *realExecutor) RemoveAll(ctx context.Context, path string) error {
	describe(ctx, e.logger, false, "delete recursively", logging.Path("path", path))
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

func (e *realExecutor) Run(ctx context.Context, action Action) (bool, error) {
	describe(ctx, e.logger, false, action.Description, action.Attrs...)
	if action.Apply == nil {
		return true, nil
	}
	return true, action.Apply(ctx)
}

// planExecutor logs every effect and applies none of them.
type planExecutor struct {
	logger *slog.Logger
}

func (e *planExecutor) DryRun() bool { return true }

func (e *planExecutor) Move(ctx context.Context, src, dst string) error {
	describe(ctx, e.logger, true, "move", logging.Path("from", src), logging.Path("to", dst))
	return nil
}

func (e *planExecutor) MkdirAll(ctx context.Context, path string) error {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return nil
	}
	describe(ctx, e.logger, true, "create directory", logging.Path("path", path))
	return nil
}

func (e *planExecutor) WriteFile(ctx context.Context, path string, data []byte) error {
	describe(ctx, e.logger, true, "write file", logging.Path("path", path), logging.Int("bytes", len(data)))
	return nil
}

func (e *planExecutor) RemoveEmptyDir(ctx context.Context, path string) error {
	describe(ctx, e.logger, true, "remove empty directory", logging.Path("path", path))
	return nil
}

func (e *planExecutor) RemoveAll(ctx context.Context, path string) error {
	describe(ctx, e.logger, true, "delete recursively", logging.Path("path", path))
	return nil
}

func (e *planExecutor) Run(ctx context.Context, action Action) (bool, error) {
	describe(ctx, e.logger, true, action.Description, action.Attrs...)
	return false, nil
}

// Exists reports whether path is present. Read-only helper shared by stages.
func Exists(path string) bool {
	_, err := os.Lstat(filepath.Clean(path))
	return err == nil
}
