// Package versioncache persists Last-Modified-Version markers for
// bibliography artifacts as sidecar files.
//
// Reads fail open: a missing or corrupt marker is reported as version 0 so
// the next sync performs a full fetch rather than trusting stale state.
package versioncache
