// Package scan lists the top level of a target directory the way every stage
// sees it: without the trash directory and without entries matching the
// configured ignore patterns.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"romtidy/internal/textutil"
)

// Entry is one top-level item.
type Entry struct {
	Name  string
	Path  string
	IsDir bool
	Size  int64
}

// Ext returns the lower-cased extension including the dot.
func (e Entry) Ext() string {
	return strings.ToLower(filepath.Ext(e.Name))
}

// Stem returns the name without its final extension.
func (e Entry) Stem() string {
	return strings.TrimSuffix(e.Name, filepath.Ext(e.Name))
}

// Options control which entries are hidden from stages.
type Options struct {
	TrashName string
	Ignore    []string
}

// Top lists dir non-recursively in version-aware name order.
func Top(dir string, opts Options) ([]Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if opts.TrashName != "" && name == opts.TrashName {
			continue
		}
		if Ignored(name, opts.Ignore) {
			continue
		}
		entry := Entry{Name: name, Path: filepath.Join(dir, name), IsDir: de.IsDir()}
		if !entry.IsDir {
			if info, err := de.Info(); err == nil {
				entry.Size = info.Size()
			}
		}
		entries = append(entries, entry)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return textutil.VersionLess(entries[i].Name, entries[j].Name)
	})
	return entries, nil
}

// Ignored reports whether name matches any pattern. Invalid patterns are
// rejected by config validation and never match here.
func Ignored(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// Files returns the non-directory entries whose extension is one of exts.
func Files(entries []Entry, exts ...string) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.IsDir {
			continue
		}
		if len(exts) == 0 || hasExt(e.Ext(), exts) {
			out = append(out, e)
		}
	}
	return out
}

// Dirs returns the directory entries.
func Dirs(entries []Entry) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.IsDir {
			out = append(out, e)
		}
	}
	return out
}

// Any reports whether a file with one of exts is present.
func Any(entries []Entry, exts ...string) bool {
	return len(Files(entries, exts...)) > 0
}

func hasExt(ext string, exts []string) bool {
	for _, candidate := range exts {
		if ext == candidate {
			return true
		}
	}
	return false
}
