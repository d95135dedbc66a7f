package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeZotero()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.BibliographyDir, err = expandPath(c.Paths.BibliographyDir); err != nil {
		return fmt.Errorf("paths.bibliography_dir: %w", err)
	}
	if c.Paths.BibliographyDir == "" {
		c.Paths.BibliographyDir = defaultBibliographyDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.DataDir == "" {
		if c.Paths.DataDir, err = expandPath(defaultDataDir); err != nil {
			return fmt.Errorf("paths.data_dir: %w", err)
		}
	}
	return nil
}

// Environment variables win over the config file so CI secrets never need to
// be written to disk.
func (c *Config) normalizeZotero() {
	if value, ok := os.LookupEnv("ZOTERO_USER_ID"); ok && strings.TrimSpace(value) != "" {
		c.Zotero.UserID = value
	}
	if value, ok := os.LookupEnv("ZOTERO_BEARER_TOKEN"); ok && strings.TrimSpace(value) != "" {
		c.Zotero.BearerToken = value
	}
	c.Zotero.UserID = strings.TrimSpace(c.Zotero.UserID)
	c.Zotero.BearerToken = strings.TrimSpace(c.Zotero.BearerToken)
	c.Zotero.BaseURL = strings.TrimRight(strings.TrimSpace(c.Zotero.BaseURL), "/")
	if c.Zotero.BaseURL == "" {
		c.Zotero.BaseURL = defaultZoteroBaseURL
	}
	if c.Zotero.RequestTimeoutSeconds <= 0 {
		c.Zotero.RequestTimeoutSeconds = defaultRequestTimeoutSeconds
	}
	if c.Zotero.ConnectTimeoutSeconds <= 0 {
		c.Zotero.ConnectTimeoutSeconds = defaultConnectTimeoutSeconds
	}
	if c.Zotero.RetryAttempts <= 0 {
		c.Zotero.RetryAttempts = defaultRetryAttempts
	}
	if c.Zotero.RequestsPerSecond <= 0 {
		c.Zotero.RequestsPerSecond = defaultRequestsPerSecond
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
}
