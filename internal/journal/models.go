package journal

import "time"

// Outcome classifications for one resource within a run.
const (
	OutcomeSynced       = "synced"
	OutcomeUnchanged    = "unchanged"
	OutcomeAccessDenied = "access_denied"
	OutcomeFailed       = "failed"
)

// Run is one invocation of the sync command.
type Run struct {
	ID              string
	StartedAt       time.Time
	FinishedAt      time.Time
	ResourcesTotal  int
	ResourcesFailed int
}

// Finished reports whether the run recorded a completion time. Runs without
// one were interrupted before FinishRun.
func (r Run) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// Outcome is the journal entry for one resource within a run.
type Outcome struct {
	Resource      string
	Result        string
	CachedVersion int64
	LatestVersion int64
	Pages         int
	Bytes         int64
	Duration      time.Duration
	Detail        string
}
