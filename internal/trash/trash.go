// Package trash implements the reversible holding area every stage relocates
// superseded files into. Nothing placed there is deleted until the operator
// confirms an auto-clean purge.
package trash

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"romtidy/internal/fsops"
	"romtidy/internal/logging"
	"romtidy/internal/services"
)

// ErrCollision is returned when the trash already holds an entry with the
// same name for the current run.
var ErrCollision = errors.New("trash entry already exists")

// StampLayout names per-run trash subdirectories.
const StampLayout = "20060102-150405"

// Journal records successful relocations.
type Journal interface {
	RecordRelocation(ctx context.Context, runID, source, destination string) error
}

// Manager relocates paths into <target>/<trash>/<run-stamp>/.
type Manager struct {
	root    string
	runDir  string
	exec    fsops.Executor
	logger  *slog.Logger
	journal Journal
	runID   string

	created bool
	planned map[string]struct{}
	count   int
}

// New builds a manager for one run. dirName is the trash directory name
// inside target.
func New(target, dirName string, started time.Time, exec fsops.Executor, logger *slog.Logger) *Manager {
	root := filepath.Join(target, dirName)
	return &Manager{
		root:    root,
		runDir:  filepath.Join(root, started.Format(StampLayout)),
		exec:    exec,
		logger:  logging.NewComponentLogger(logger, "trash"),
		planned: make(map[string]struct{}),
	}
}

// WithJournal attaches a relocation journal for runID.
func (m *Manager) WithJournal(journal Journal, runID string) *Manager {
	m.journal = journal
	m.runID = runID
	return m
}

// Root returns the trash root directory.
func (m *Manager) Root() string { return m.root }

// RunDir returns this run's trash subdirectory.
func (m *Manager) RunDir() string { return m.runDir }

// Count returns the number of relocations made (or planned) this run.
func (m *Manager) Count() int { return m.count }

// Relocate moves path into the run's trash directory under its base name and
// returns the destination.
func (m *Manager) Relocate(ctx context.Context, path string) (string, error) {
	name := filepath.Base(path)
	dest := filepath.Join(m.runDir, name)

	if _, dup := m.planned[name]; dup || fsops.Exists(dest) {
		return "", services.Wrap(services.ErrFilesystem, "trash", "relocate",
			fmt.Sprintf("%s already in %s", name, m.runDir), ErrCollision)
	}
	if !m.created {
		if err := m.exec.MkdirAll(ctx, m.runDir); err != nil {
			return "", services.Wrap(services.ErrFilesystem, "trash", "create run directory", m.runDir, err)
		}
		m.created = true
	}
	if err := m.exec.Move(ctx, path, dest); err != nil {
		return "", services.Wrap(services.ErrFilesystem, "trash", "relocate", path, err)
	}
	m.planned[name] = struct{}{}
	m.count++

	if m.journal != nil && !m.exec.DryRun() {
		if err := m.journal.RecordRelocation(ctx, m.runID, path, dest); err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, m.logger), "relocation not journaled", "trash_journal_failed",
				logging.Path("path", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check state_dir permissions"),
				logging.String(logging.FieldImpact, "restore will not list this entry"),
			)
		}
	}
	return dest, nil
}

// Occupancy summarizes the trash contents across all runs.
type Occupancy struct {
	Runs  int
	Files int
	Bytes int64
}

// Empty reports whether the trash holds nothing.
func (o Occupancy) Empty() bool { return o.Files == 0 && o.Runs == 0 }

// Occupancy walks the trash root.
func (m *Manager) Occupancy() (Occupancy, error) {
	return Measure(m.root)
}

// Measure walks a trash root and counts regular files and their sizes.
func Measure(root string) (Occupancy, error) {
	var occ Occupancy
	runs, err := ListRuns(root)
	if err != nil {
		return occ, err
	}
	occ.Runs = len(runs)
	for _, run := range runs {
		occ.Files += run.Files
		occ.Bytes += run.Size
	}
	return occ, nil
}

// RunDir describes one run's trash subdirectory.
type RunDir struct {
	Name    string
	Path    string
	ModTime time.Time
	Files   int
	Size    int64
}

// ListRuns returns the per-run subdirectories of root, oldest first.
func ListRuns(root string) ([]RunDir, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var runs []RunDir
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		dirPath := filepath.Join(root, entry.Name())
		files, size := dirUsage(dirPath)
		runs = append(runs, RunDir{
			Name:    entry.Name(),
			Path:    dirPath,
			ModTime: info.ModTime(),
			Files:   files,
			Size:    size,
		})
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Name < runs[j].Name })
	return runs, nil
}

// Purge deletes the whole trash root. Only a confirmed auto-clean calls it.
func (m *Manager) Purge(ctx context.Context) error {
	if !fsops.Exists(m.root) {
		return nil
	}
	if err := m.exec.RemoveAll(ctx, m.root); err != nil {
		return services.Wrap(services.ErrFilesystem, "trash", "purge", m.root, err)
	}
	return nil
}

// dirUsage counts files and bytes below path.
func dirUsage(path string) (int, int64) {
	var files int
	var size int64
	_ = filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // best effort
		}
		if !info.IsDir() {
			files++
			size += info.Size()
		}
		return nil
	})
	return files, size
}
