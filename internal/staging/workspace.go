package staging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

const (
	// DirPrefix marks directories owned by this package.
	DirPrefix = "NMSMC_"
	lockName  = ".nmsmc.lock"
)

// Workspace is a locked work directory for one run.
type Workspace struct {
	Dir   string
	RunID string
	lock  *flock.Flock
}

// Create makes and locks the work directory for runID under stagingDir.
func Create(stagingDir, runID string) (*Workspace, error) {
	stagingDir = strings.TrimSpace(stagingDir)
	if stagingDir == "" {
		return nil, errors.New("staging directory required")
	}
	runID = strings.TrimSpace(runID)
	if runID == "" || strings.ContainsAny(runID, `/\`) {
		return nil, fmt.Errorf("invalid run id %q", runID)
	}
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging directory: %w", err)
	}

	dir := filepath.Join(stagingDir, DirPrefix+runID)
	if err := os.Mkdir(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create work directory: %w", err)
	}

	lock := flock.New(filepath.Join(dir, lockName))
	ok, err := lock.TryLock()
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("lock work directory: %w", err)
	}
	if !ok {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("work directory %s is locked by another run", dir)
	}
	return &Workspace{Dir: dir, RunID: runID, lock: lock}, nil
}

// Release unlocks the workspace and removes it unless keep is set.
func (w *Workspace) Release(keep bool) error {
	if w == nil {
		return nil
	}
	var errs []error
	if w.lock != nil {
		if err := w.lock.Unlock(); err != nil {
			errs = append(errs, fmt.Errorf("unlock work directory: %w", err))
		}
	}
	if !keep {
		if err := os.RemoveAll(w.Dir); err != nil {
			errs = append(errs, fmt.Errorf("remove work directory: %w", err))
		}
	}
	return errors.Join(errs...)
}

// tryLock takes dir's lock if it is free. A directory without a lock file
// counts as free and is not modified. When ok is true, release must be called.
func tryLock(dir string) (ok bool, release func(), err error) {
	path := filepath.Join(dir, lockName)
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		return true, func() {}, nil
	}
	lock := flock.New(path)
	ok, err = lock.TryLock()
	if err != nil || !ok {
		return false, func() {}, err
	}
	return true, func() { _ = lock.Unlock() }, nil
}
