package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// BibliographyDir holds the .bib artifacts and their version sidecars.
	BibliographyDir string `toml:"bibliography_dir"`
	// DataDir holds the run journal database and the run lock file.
	DataDir string `toml:"data_dir"`
}

// Zotero contains connection settings for the Zotero API.
type Zotero struct {
	BaseURL               string `toml:"base_url"`
	UserID                string `toml:"user_id"`
	BearerToken           string `toml:"bearer_token"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	ConnectTimeoutSeconds int    `toml:"connect_timeout_seconds"`
	RetryAttempts         int    `toml:"retry_attempts"`
	RequestsPerSecond     int    `toml:"requests_per_second"`
}

// Logging contains log output configuration.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is the root configuration for bibsync.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Zotero  Zotero  `toml:"zotero"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the expected configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/bibsync/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has path fields expanded, environment overrides applied, and
// credentials validated. The second return value is the resolved path and
// the third reports whether a file was actually found there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// LoadUnvalidated is Load without the credential validation step, for
// commands that only inspect local state (history, config show) and must not
// demand API secrets.
func LoadUnvalidated(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		path = defaultPath
	} else {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		path = expanded
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return path, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	return path, true, nil
}

// JournalPath returns the run journal database location.
func (c *Config) JournalPath() string {
	return filepath.Join(c.Paths.DataDir, "bibsync.db")
}

// LockPath returns the single-instance lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "bibsync.lock")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if path == "~" {
			return home, nil
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}
