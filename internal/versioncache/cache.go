package versioncache

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"bibsync/internal/logging"
)

// sidecarSuffix is appended to the artifact name to form the marker file name,
// e.g. zotero.bib -> zotero.bib-last-modified-version.
const sidecarSuffix = "-last-modified-version"

// Cache reads and writes version marker sidecar files for bibliography
// artifacts. One marker file exists per artifact, holding a single integer.
type Cache struct {
	dir    string
	logger *slog.Logger
}

// New creates a cache rooted at dir.
func New(dir string, logger *slog.Logger) *Cache {
	return &Cache{
		dir:    dir,
		logger: logging.NewComponentLogger(logger, "versioncache"),
	}
}

// Path returns the marker file location for an artifact name.
func (c *Cache) Path(name string) string {
	return filepath.Join(c.dir, name+sidecarSuffix)
}

// Read returns the cached version for an artifact. A missing or unparseable
// marker file yields 0, which forces a full fetch on the next sync. Read
// failures are deliberately not errors: re-fetching is always safe.
func (c *Cache) Read(name string) int64 {
	data, err := os.ReadFile(c.Path(name))
	if err != nil {
		c.logger.Debug("no usable version marker",
			logging.String(logging.FieldResource, name),
			logging.Error(err))
		return 0
	}

	line, _, _ := strings.Cut(string(data), "\n")
	version, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
	if err != nil {
		c.logger.Warn("corrupt version marker, forcing full fetch",
			logging.String(logging.FieldResource, name),
			logging.Error(err))
		return 0
	}
	return version
}

// Write persists a new version marker atomically via temp file + rename.
// Callers must only invoke this after the content artifact write succeeded.
func (c *Cache) Write(name string, version int64) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	path := c.Path(name)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(strconv.FormatInt(version, 10)), 0o644); err != nil {
		return fmt.Errorf("write temp marker: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp marker: %w", err)
	}
	return nil
}
