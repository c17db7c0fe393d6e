package preflight

import (
	"context"

	"romtidy/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the directory checks for the given config and target.
// An empty target skips the target check.
func RunAll(_ context.Context, cfg *config.Config, target string) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	if target != "" {
		results = append(results, CheckDirectoryAccess("Target directory", target))
	}
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	if target != "" {
		results = append(results, CheckTrash(cfg, target))
	}
	return results
}
