// Package config loads and validates bibsync configuration.
//
// Configuration comes from an optional TOML file layered over repository
// defaults, with the Zotero credentials always overridable through the
// ZOTERO_USER_ID and ZOTERO_BEARER_TOKEN environment variables so CI jobs
// can run without any config file at all. Load expands paths, applies
// environment overrides, and validates before returning.
package config
