// Package sync drives the per-resource synchronization workflow.
//
// A run enumerates the resources to sync (the user's own library plus one per
// group), then walks each through probe, access check, version comparison,
// full paginated fetch, content write, and marker write. The content artifact
// is always durably written before its version marker so an interruption
// leaves a stale marker (harmless, forces a re-fetch) rather than a marker
// that lies about the content.
package sync
