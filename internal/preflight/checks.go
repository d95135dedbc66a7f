package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"bibsync/internal/config"
)

// Result captures the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// CheckDirectoryAccess verifies that the directory exists (creating it if
// needed) and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if path == "" {
		return Result{Name: name, Detail: "path not configured"}
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			if mkErr := os.MkdirAll(path, 0o755); mkErr != nil {
				return Result{Name: name, Detail: fmt.Sprintf("%s (error: create: %v)", path, mkErr)}
			}
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (created)", path)}
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

// Check runs every filesystem check a sync needs before network activity.
func Check(cfg *config.Config) []Result {
	return []Result{
		CheckDirectoryAccess("bibliography directory", cfg.Paths.BibliographyDir),
		CheckDirectoryAccess("data directory", cfg.Paths.DataDir),
	}
}

// FirstFailure returns the first failed result, if any.
func FirstFailure(results []Result) (Result, bool) {
	for _, result := range results {
		if !result.Passed {
			return result, true
		}
	}
	return Result{}, false
}
