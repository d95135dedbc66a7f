package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable. Credential checks run here so
// a missing secret aborts the run before any network activity.
func (c *Config) Validate() error {
	if err := c.validateZotero(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateZotero() error {
	if c.Zotero.UserID == "" {
		return errors.New("zotero.user_id is required: set ZOTERO_USER_ID or edit the config file (create with 'bibsync config init')")
	}
	if c.Zotero.BearerToken == "" {
		return errors.New("zotero.bearer_token is required: set ZOTERO_BEARER_TOKEN or edit the config file (create with 'bibsync config init')")
	}
	if c.Zotero.RetryAttempts > 10 {
		return fmt.Errorf("zotero.retry_attempts must be 10 or fewer, got %d", c.Zotero.RetryAttempts)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
