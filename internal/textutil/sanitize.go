package textutil

import (
	"sort"
	"strings"

	"github.com/maruel/natural"
)

// SafeDirName converts name to a filesystem-safe token: spaces and every
// character outside [A-Za-z0-9_-] become '_' and runs of '_' collapse to one.
func SafeDirName(name string) string {
	return safeName(name, false)
}

// SafeFileName applies the SafeDirName rules but additionally keeps '.'.
func SafeFileName(name string) string {
	return safeName(name, true)
}

func safeName(name string, allowDot bool) string {
	var b strings.Builder
	b.Grow(len(name))
	lastUnderscore := false
	for _, r := range name {
		keep := (r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') ||
			r == '-' ||
			(allowDot && r == '.')
		if keep {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return b.String()
}

// VersionLess reports whether a sorts before b when embedded digit runs are
// compared numerically ("Disc 2" before "Disc 10").
func VersionLess(a, b string) bool {
	if natural.Less(a, b) {
		return true
	}
	if natural.Less(b, a) {
		return false
	}
	return a < b
}

// SortVersion sorts values in place using VersionLess.
func SortVersion(values []string) {
	sort.SliceStable(values, func(i, j int) bool {
		return VersionLess(values[i], values[j])
	})
}
