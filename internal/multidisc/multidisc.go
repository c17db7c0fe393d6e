// Package multidisc groups compressed discs that carry a "(Disc N)" marker
// into games keyed by a canonical name.
//
// Marker grammar: optional whitespace followed by the literal "(disc", any
// case, first occurrence anywhere in the filename. The canonical name is the
// text before the marker, NFC-normalized and trimmed. Files without a marker
// are never grouped.
package multidisc

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"romtidy/internal/textutil"
)

var marker = regexp.MustCompile(`(?i)\s*\(disc`)

// Member is one disc of a game.
type Member struct {
	Name string
	Path string
}

// Game is a set of discs sharing a canonical name.
type Game struct {
	Canonical string
	Members   []Member
}

// HiddenDir returns the per-game directory name.
func (g Game) HiddenDir() string {
	return "." + textutil.SafeDirName(g.Canonical)
}

// PlaylistName returns the playlist filename.
func (g Game) PlaylistName() string {
	return textutil.SafeFileName(g.Canonical + ".m3u")
}

// Normalize returns the canonical form of a name fragment. It is idempotent.
func Normalize(name string) string {
	return strings.TrimSpace(norm.NFC.String(name))
}

// Canonical extracts the canonical game name from filename. ok is false when
// the name carries no disc marker.
func Canonical(filename string) (string, bool) {
	loc := marker.FindStringIndex(filename)
	if loc == nil {
		return "", false
	}
	return Normalize(filename[:loc[0]]), true
}

// Unmarked records a marked file whose canonical name came out empty.
type Unmarked struct {
	Path string
}

// Group partitions paths into games. Files without a marker are ignored;
// files whose canonical name is empty are returned separately.
func Group(paths []string) ([]Game, []Unmarked) {
	byName := make(map[string]*Game)
	var empty []Unmarked
	for _, path := range paths {
		name := filepath.Base(path)
		canonical, ok := Canonical(name)
		if !ok {
			continue
		}
		if canonical == "" {
			empty = append(empty, Unmarked{Path: path})
			continue
		}
		game, exists := byName[canonical]
		if !exists {
			game = &Game{Canonical: canonical}
			byName[canonical] = game
		}
		game.Members = append(game.Members, Member{Name: name, Path: path})
	}

	games := make([]Game, 0, len(byName))
	for _, game := range byName {
		sort.SliceStable(game.Members, func(i, j int) bool {
			return textutil.VersionLess(game.Members[i].Name, game.Members[j].Name)
		})
		games = append(games, *game)
	}
	sort.Slice(games, func(i, j int) bool {
		return textutil.VersionLess(games[i].Canonical, games[j].Canonical)
	})
	return games, empty
}
