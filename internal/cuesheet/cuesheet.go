// Package cuesheet extracts data-file references from disc descriptor sheets.
//
// The accepted grammar is versioned because generated playlists and the
// conversion stage's cleanup depend on it: a line is a reference when it is a
// FILE directive (any case, optional leading whitespace) naming a quoted or
// bare filename with a bin, img, iso or wav extension. Everything after the
// filename (the file type keyword) is ignored.
package cuesheet

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// GrammarVersion identifies the reference grammar implemented by Parse.
const GrammarVersion = 1

// DescriptorExt is the extension of descriptor sheets.
const DescriptorExt = ".cue"

// DataExts are the data-file extensions a descriptor may reference.
var DataExts = []string{".bin", ".img", ".iso", ".wav"}

var fileDirective = regexp.MustCompile(`(?i)^\s*FILE\s+(?:"([^"]+\.(?:bin|img|iso|wav))"|([^"\s]+\.(?:bin|img|iso|wav)))(?:\s.*)?$`)

// Set is a descriptor plus the data files it references.
type Set struct {
	Descriptor string
	Files      []string
	Base       string
}

// Parse returns the referenced filenames in order of first appearance.
func Parse(r io.Reader) ([]string, error) {
	var names []string
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		match := fileDirective.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		name := match[1]
		if name == "" {
			name = match[2]
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read descriptor: %w", err)
	}
	return names, nil
}

// Load reads descriptor and resolves its references relative to the
// descriptor's directory.
func Load(descriptor string) (Set, error) {
	set := Set{Descriptor: descriptor, Base: BaseName(descriptor)}
	file, err := os.Open(descriptor)
	if err != nil {
		return set, fmt.Errorf("open descriptor: %w", err)
	}
	defer file.Close()

	names, err := Parse(file)
	if err != nil {
		return set, err
	}
	dir := filepath.Dir(descriptor)
	for _, name := range names {
		set.Files = append(set.Files, filepath.Join(dir, filepath.FromSlash(strings.ReplaceAll(name, `\`, "/"))))
	}
	return set, nil
}

// BaseName returns the descriptor filename without its extension.
func BaseName(descriptor string) string {
	name := filepath.Base(descriptor)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
