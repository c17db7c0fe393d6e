package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"romtidy/internal/config"
)

// Requirement defines an external dependency romtidy relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// ChdmanRequirements lists the configured chdman candidates. Each is optional
// on its own; conversion needs any one of them.
func ChdmanRequirements(cfg config.Chdman) []Requirement {
	var reqs []Requirement
	if cfg.Binary != "" {
		reqs = append(reqs, Requirement{
			Name:        "chdman",
			Command:     cfg.Binary,
			Description: "CHD compression tool on PATH",
			Optional:    true,
		})
	}
	if cfg.FallbackPath != "" {
		reqs = append(reqs, Requirement{
			Name:        "chdman (fallback)",
			Command:     cfg.FallbackPath,
			Description: "CHD compression tool at fixed install path",
			Optional:    true,
		})
	}
	if len(cfg.SandboxCommand) > 0 {
		reqs = append(reqs, Requirement{
			Name:        "chdman (sandbox)",
			Command:     cfg.SandboxCommand[0],
			Description: "sandbox wrapper: " + strings.Join(cfg.SandboxCommand, " "),
			Optional:    true,
		})
	}
	return reqs
}

// AnyAvailable reports whether at least one status is available.
func AnyAvailable(statuses []Status) bool {
	for _, status := range statuses {
		if status.Available {
			return true
		}
	}
	return false
}
