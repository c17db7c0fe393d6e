package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"romtidy/internal/services"
)

// TargetLock is an advisory lock on one target directory. The lock file
// lives in the state directory so the target is never written by it.
type TargetLock struct {
	path string
	lock *flock.Flock
}

func lockPath(lockDir, target string) string {
	sum := sha256.Sum256([]byte(target))
	return filepath.Join(lockDir, hex.EncodeToString(sum[:8])+".lock")
}

// AcquireLock takes the lock for an absolute target path without blocking.
// A target already locked by another process yields services.ErrValidation.
func AcquireLock(lockDir, target string) (*TargetLock, error) {
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	path := lockPath(lockDir, target)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "validate", "lock target",
			fmt.Sprintf("another romtidy run is processing %s (lock %s)", target, path), nil)
	}
	return &TargetLock{path: path, lock: lock}, nil
}

// Path returns the lock file path.
func (l *TargetLock) Path() string { return l.path }

// Release drops the lock.
func (l *TargetLock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
