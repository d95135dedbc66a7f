// Package journal records sync run history in SQLite.
//
// Each invocation of bibsync sync opens a run (identified by a UUID) and
// records one outcome row per resource: synced, unchanged, access_denied, or
// failed, together with the version transition and fetch statistics. The
// history command reads this back for display. The journal is informational;
// sync correctness never depends on it.
package journal
