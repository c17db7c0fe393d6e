package preflight

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"romtidy/internal/config"
	"romtidy/internal/trash"
)

// CheckTrash reports how much a target's trash currently holds. It always
// passes; a full trash is informational.
func CheckTrash(cfg *config.Config, target string) Result {
	const name = "Trash"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	occ, err := trash.Measure(filepath.Join(target, cfg.Paths.TrashDir))
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("unreadable: %v", err)}
	}
	if occ.Empty() {
		return Result{Name: name, Passed: true, Detail: "Empty"}
	}
	return Result{
		Name:   name,
		Passed: true,
		Detail: fmt.Sprintf("%d files, %s across %d runs", occ.Files, humanize.Bytes(uint64(occ.Bytes)), occ.Runs),
	}
}
