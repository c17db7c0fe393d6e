// Package inventory accounts for the games present at the top level after
// grouping and writes a timestamped report.
package inventory

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"romtidy/internal/scan"
	"romtidy/internal/textutil"
)

// Record is one inventory line.
type Record struct {
	Name  string
	Discs int
}

// Line renders the record as it appears in the report.
func (r Record) Line() string {
	if r.Discs == 1 {
		return r.Name
	}
	return fmt.Sprintf("%s (%d discs)", r.Name, r.Discs)
}

// Inventory maps game names to disc counts. Playlist-derived multi-disc
// counts are never downgraded by later single-file entries.
type Inventory struct {
	counts map[string]int
}

// New returns an empty inventory.
func New() *Inventory {
	return &Inventory{counts: make(map[string]int)}
}

// AddPlaylist records a playlist count. Counts above one always win; lower
// counts only fill an absent name.
func (inv *Inventory) AddPlaylist(name string, discs int) {
	if discs > 1 {
		inv.counts[name] = discs
		return
	}
	if _, ok := inv.counts[name]; !ok {
		inv.counts[name] = discs
	}
}

// AddSingle records a standalone container unless the name is already known.
func (inv *Inventory) AddSingle(name string) {
	if _, ok := inv.counts[name]; !ok {
		inv.counts[name] = 1
	}
}

// Count returns the recorded disc count for name.
func (inv *Inventory) Count(name string) (int, bool) {
	n, ok := inv.counts[name]
	return n, ok
}

// Len returns the number of recorded games.
func (inv *Inventory) Len() int { return len(inv.counts) }

// Records returns all records in version-aware name order.
func (inv *Inventory) Records() []Record {
	records := make([]Record, 0, len(inv.counts))
	for name, discs := range inv.counts {
		records = append(records, Record{Name: name, Discs: discs})
	}
	sort.Slice(records, func(i, j int) bool {
		return textutil.VersionLess(records[i].Name, records[j].Name)
	})
	return records
}

// Build scans the top-level entries: playlists first, then containers.
func Build(entries []scan.Entry, playlistExt, containerExt string) (*Inventory, error) {
	inv := New()
	for _, entry := range scan.Files(entries, playlistExt) {
		discs, err := countLines(entry.Path)
		if err != nil {
			return nil, fmt.Errorf("read playlist %s: %w", entry.Name, err)
		}
		inv.AddPlaylist(entry.Stem(), discs)
	}
	for _, entry := range scan.Files(entries, containerExt) {
		inv.AddSingle(entry.Stem())
	}
	return inv, nil
}

func countLines(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	count := 0
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) != "" {
			count++
		}
	}
	return count, scanner.Err()
}

// ReportName returns the report filename for generated.
func ReportName(generated time.Time) string {
	return "inventory_" + generated.Format("20060102_150405") + ".txt"
}

// Render produces the report text.
func Render(inv *Inventory, generated time.Time) string {
	var b strings.Builder
	b.WriteString("Game Inventory\n")
	b.WriteString("Generated: ")
	b.WriteString(generated.Format("2006-01-02 15:04:05"))
	b.WriteString("\n\n")
	for _, record := range inv.Records() {
		b.WriteString(record.Line())
		b.WriteString("\n")
	}
	return b.String()
}
