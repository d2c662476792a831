package deps

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// CheckDirectory verifies that path is a readable and writable directory. A
// missing path passes when its nearest existing ancestor is writable, since
// the directory is created on demand.
func CheckDirectory(name, path, description string) Status {
	status := Status{Name: name, Command: path, Description: description}
	if path == "" {
		status.Detail = "path not configured"
		return status
	}

	target := path
	for {
		info, err := os.Stat(target)
		if err == nil {
			if !info.IsDir() {
				status.Detail = fmt.Sprintf("%s is not a directory", target)
				return status
			}
			break
		}
		if !errors.Is(err, os.ErrNotExist) {
			status.Detail = fmt.Sprintf("stat %s: %v", target, err)
			return status
		}
		parent := filepath.Dir(target)
		if parent == target {
			status.Detail = fmt.Sprintf("no existing ancestor for %s", path)
			return status
		}
		target = parent
	}

	if err := unix.Access(target, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		status.Detail = fmt.Sprintf("%s: insufficient permissions: %v", target, err)
		return status
	}
	status.Available = true
	if target != path {
		status.Detail = fmt.Sprintf("will be created under %s", target)
	}
	return status
}
