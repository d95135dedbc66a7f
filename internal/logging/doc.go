// Package logging builds slog loggers for bibsync.
//
// Two output formats are supported: a compact console format for humans and
// line-delimited JSON for CI log collectors. Helper constructors (String,
// Int64, Error, ...) keep call sites terse, and NewComponentLogger attaches
// the standard component attribute used by the console handler.
package logging
