// Package preflight verifies local filesystem prerequisites before a sync
// touches the network. Checks create missing directories and confirm
// read/write access so credential-gated API calls are never wasted on a run
// that could not persist its results.
package preflight
