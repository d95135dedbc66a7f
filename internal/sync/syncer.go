package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"bibsync/internal/journal"
	"bibsync/internal/logging"
	"bibsync/internal/versioncache"
	"bibsync/internal/zotero"
)

// Client is the slice of the Zotero API the syncer consumes.
type Client interface {
	Get(ctx context.Context, url string) (*zotero.Response, error)
	FetchAllPages(ctx context.Context, startURL string) (*zotero.PageSet, error)
	ListGroups(ctx context.Context) ([]zotero.Group, error)
	UserItemsURL() string
	GroupItemsURL(groupID int64) string
}

// Syncer synchronizes remote libraries into local bibliography artifacts.
type Syncer struct {
	client  Client
	cache   *versioncache.Cache
	journal *journal.Store
	dir     string
	logger  *slog.Logger
}

// New constructs a syncer writing artifacts into dir. The journal store may
// be nil; history recording is then skipped.
func New(client Client, cache *versioncache.Cache, store *journal.Store, dir string, logger *slog.Logger) *Syncer {
	return &Syncer{
		client:  client,
		cache:   cache,
		journal: store,
		dir:     dir,
		logger:  logging.NewComponentLogger(logger, "sync"),
	}
}

// Summary aggregates the per-resource outcomes of one run.
type Summary struct {
	RunID        string
	Total        int
	Synced       int
	Unchanged    int
	AccessDenied int
	Failed       int
}

// Run synchronizes every enumerated resource sequentially. Per-resource
// failures are logged and journaled without stopping the run; only
// enumeration failure aborts.
func (s *Syncer) Run(ctx context.Context) (*Summary, error) {
	resources, err := s.Resources(ctx)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Total: len(resources)}
	runID := s.beginRun(ctx)
	summary.RunID = runID

	for _, resource := range resources {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		outcome := s.SyncResource(ctx, resource)
		s.recordOutcome(ctx, runID, outcome)

		switch outcome.Result {
		case journal.OutcomeSynced:
			summary.Synced++
		case journal.OutcomeUnchanged:
			summary.Unchanged++
		case journal.OutcomeAccessDenied:
			summary.AccessDenied++
		case journal.OutcomeFailed:
			summary.Failed++
		}
	}

	s.finishRun(ctx, runID, summary)
	s.logger.Info("run complete",
		logging.Int("total", summary.Total),
		logging.Int("synced", summary.Synced),
		logging.Int("unchanged", summary.Unchanged),
		logging.Int("access_denied", summary.AccessDenied),
		logging.Int("failed", summary.Failed))
	return summary, nil
}

// SyncResource walks one resource through the sync state machine and reports
// the outcome. It never writes the version marker unless the content artifact
// write has already succeeded.
func (s *Syncer) SyncResource(ctx context.Context, resource Resource) journal.Outcome {
	start := time.Now()
	outcome := journal.Outcome{Resource: resource.OutputName}
	logger := s.logger.With(logging.String(logging.FieldResource, resource.OutputName))

	probe, err := s.client.Get(ctx, resource.URL)
	if errors.Is(err, zotero.ErrForbidden) {
		logger.Error("access to library not granted", logging.String("library", resource.Label))
		outcome.Result = journal.OutcomeAccessDenied
		outcome.Detail = "access to library not granted"
		outcome.Duration = time.Since(start)
		return outcome
	}
	if err != nil {
		logger.Error("probe failed", logging.Error(err))
		outcome.Result = journal.OutcomeFailed
		outcome.Detail = err.Error()
		outcome.Duration = time.Since(start)
		return outcome
	}

	cached := s.cache.Read(resource.OutputName)
	latest := probe.Version
	outcome.CachedVersion = cached
	outcome.LatestVersion = latest

	if cached == latest {
		logger.Info("online version matches cache, skipping",
			logging.Int64("version", latest))
		outcome.Result = journal.OutcomeUnchanged
		outcome.Duration = time.Since(start)
		return outcome
	}

	logger.Info("online version differs from cache, fetching",
		logging.Int64("cached", cached),
		logging.Int64("latest", latest))

	pages, err := s.client.FetchAllPages(ctx, resource.URL)
	if err != nil {
		logger.Error("fetch failed", logging.Error(err))
		outcome.Result = journal.OutcomeFailed
		outcome.Detail = err.Error()
		outcome.Duration = time.Since(start)
		return outcome
	}
	outcome.Pages = pages.Pages
	outcome.Bytes = int64(len(pages.Body))

	if err := s.writeArtifact(resource.OutputName, pages.Body); err != nil {
		logger.Error("write artifact failed", logging.Error(err))
		outcome.Result = journal.OutcomeFailed
		outcome.Detail = err.Error()
		outcome.Duration = time.Since(start)
		return outcome
	}
	logger.Info("artifact updated",
		logging.Int("pages", pages.Pages),
		logging.Int64("bytes", outcome.Bytes))

	// Marker write comes strictly after the artifact rename: a crash between
	// the two leaves a stale marker and a harmless re-fetch next run.
	if err := s.cache.Write(resource.OutputName, latest); err != nil {
		logger.Error("write version marker failed", logging.Error(err))
		outcome.Result = journal.OutcomeFailed
		outcome.Detail = err.Error()
		outcome.Duration = time.Since(start)
		return outcome
	}
	logger.Info("version marker updated", logging.Int64("version", latest))

	outcome.Result = journal.OutcomeSynced
	outcome.Duration = time.Since(start)
	return outcome
}

func (s *Syncer) writeArtifact(name, body string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create bibliography directory: %w", err)
	}

	path := filepath.Join(s.dir, name)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(body), 0o644); err != nil {
		return fmt.Errorf("write temp artifact: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp artifact: %w", err)
	}
	return nil
}

func (s *Syncer) beginRun(ctx context.Context) string {
	if s.journal == nil {
		return ""
	}
	run, err := s.journal.BeginRun(ctx)
	if err != nil {
		s.logger.Warn("journal unavailable for this run", logging.Error(err))
		return ""
	}
	return run.ID
}

func (s *Syncer) recordOutcome(ctx context.Context, runID string, outcome journal.Outcome) {
	if s.journal == nil || runID == "" {
		return
	}
	if err := s.journal.RecordOutcome(ctx, runID, outcome); err != nil {
		s.logger.Warn("journal outcome not recorded", logging.Error(err))
	}
}

func (s *Syncer) finishRun(ctx context.Context, runID string, summary *Summary) {
	if s.journal == nil || runID == "" {
		return
	}
	if err := s.journal.FinishRun(ctx, runID, summary.Total, summary.Failed); err != nil {
		s.logger.Warn("journal run not finalized", logging.Error(err))
	}
}
