package preflight

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"romtidy/internal/config"
	"romtidy/internal/deps"
	"romtidy/internal/services"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// ValidateTarget checks the target directory and returns a fatal
// services.ErrValidation when it cannot be processed.
func ValidateTarget(path string) error {
	result := CheckDirectoryAccess("Target directory", path)
	if result.Passed {
		return nil
	}
	return services.Wrap(services.ErrValidation, "validate", "target directory", result.Detail, nil)
}

// CheckSystemDeps evaluates the configured chdman candidates. Both the
// pipeline summary and the doctor command use this to avoid duplicating the
// requirements list.
func CheckSystemDeps(_ context.Context, cfg *config.Config) []deps.Status {
	if cfg == nil {
		return nil
	}
	return deps.CheckBinaries(deps.ChdmanRequirements(cfg.Chdman))
}
