package sync_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"bibsync/internal/journal"
	"bibsync/internal/sync"
	"bibsync/internal/versioncache"
	"bibsync/internal/zotero"
)

// fakeLibrary serves a paginated biblatex listing the way the Zotero items
// endpoint does: page selection via the start query parameter and rel="next"
// links until the final page.
type fakeLibrary struct {
	version int64
	pages   []string
	status  int

	requests atomic.Int32
}

func (l *fakeLibrary) handle(basePath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l.requests.Add(1)
		if l.status != 0 {
			w.Header().Set("Last-Modified-Version", fmt.Sprintf("%d", l.version))
			w.WriteHeader(l.status)
			return
		}

		page := 0
		if start := r.URL.Query().Get("start"); start != "" {
			fmt.Sscanf(start, "%d", &page)
		}
		if page < len(l.pages)-1 {
			next := fmt.Sprintf("http://%s%s?v=3&format=biblatex&start=%d", r.Host, basePath, page+1)
			w.Header().Set("Link", fmt.Sprintf(`<%s>; rel="next"`, next))
		}
		w.Header().Set("Last-Modified-Version", fmt.Sprintf("%d", l.version))
		_, _ = w.Write([]byte(l.pages[page]))
	}
}

type fixture struct {
	server *httptest.Server
	syncer *sync.Syncer
	dir    string
	cache  *versioncache.Cache
	store  *journal.Store
}

func newFixture(t *testing.T, user *fakeLibrary, groups string, groupLibs map[int64]*fakeLibrary) *fixture {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/users/42/items", user.handle("/users/42/items"))
	mux.HandleFunc("/users/42/groups/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(groups))
	})
	for id, lib := range groupLibs {
		path := fmt.Sprintf("/groups/%d/items", id)
		mux.HandleFunc(path, lib.handle(path))
	}
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := zotero.New(zotero.Config{
		BaseURL:           server.URL,
		UserID:            "42",
		BearerToken:       "token",
		RequestsPerSecond: 1000,
	}, nil, zotero.WithSleeper(func(context.Context, time.Duration) error { return nil }))

	dir := filepath.Join(t.TempDir(), "bibliography")
	cache := versioncache.New(dir, nil)

	store, err := journal.Open(filepath.Join(t.TempDir(), "bibsync.db"))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	return &fixture{
		server: server,
		syncer: sync.New(client, cache, store, dir, nil),
		dir:    dir,
		cache:  cache,
		store:  store,
	}
}

func (f *fixture) readArtifact(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.dir, name))
	if err != nil {
		t.Fatalf("read artifact %s: %v", name, err)
	}
	return string(data)
}

func (f *fixture) artifactExists(name string) bool {
	_, err := os.Stat(filepath.Join(f.dir, name))
	return err == nil
}

func TestRunFullSyncThenFastPath(t *testing.T) {
	user := &fakeLibrary{version: 9, pages: []string{"A", "B", "C"}}
	f := newFixture(t, user, "[]", nil)

	if err := f.cache.Write("zotero.bib", 7); err != nil {
		t.Fatal(err)
	}

	summary, err := f.syncer.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.Synced != 1 || summary.Total != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if got := f.readArtifact(t, "zotero.bib"); got != "ABC" {
		t.Fatalf("content should be page concatenation, got %q", got)
	}
	marker, err := os.ReadFile(f.cache.Path("zotero.bib"))
	if err != nil {
		t.Fatal(err)
	}
	if string(marker) != "9" {
		t.Fatalf("marker should be latest version, got %q", string(marker))
	}
	// Probe plus one fetch per page.
	if got := user.requests.Load(); got != 4 {
		t.Fatalf("expected 4 item requests, got %d", got)
	}

	// Second run with no remote change: probe only, identical artifact.
	before := f.readArtifact(t, "zotero.bib")
	summary, err = f.syncer.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run returned error: %v", err)
	}
	if summary.Unchanged != 1 || summary.Synced != 0 {
		t.Fatalf("second run should be a no-op: %+v", summary)
	}
	if got := user.requests.Load(); got != 5 {
		t.Fatalf("second run should only probe, got %d total requests", got)
	}
	if after := f.readArtifact(t, "zotero.bib"); after != before {
		t.Fatalf("artifact changed on no-op run: %q -> %q", before, after)
	}
}

func TestMissingMarkerForcesFullFetch(t *testing.T) {
	user := &fakeLibrary{version: 5, pages: []string{"body"}}
	f := newFixture(t, user, "[]", nil)

	summary, err := f.syncer.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Synced != 1 {
		t.Fatalf("missing marker must force a sync: %+v", summary)
	}
}

func TestCorruptMarkerForcesFullFetch(t *testing.T) {
	user := &fakeLibrary{version: 5, pages: []string{"body"}}
	f := newFixture(t, user, "[]", nil)

	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(f.cache.Path("zotero.bib"), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	summary, err := f.syncer.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Synced != 1 {
		t.Fatalf("corrupt marker must force a sync: %+v", summary)
	}
	if got := f.readArtifact(t, "zotero.bib"); got != "body" {
		t.Fatalf("unexpected artifact: %q", got)
	}
}

func TestAccessDeniedSkipsResourceAndContinues(t *testing.T) {
	user := &fakeLibrary{version: 3, status: http.StatusForbidden}
	group := &fakeLibrary{version: 5, pages: []string{"G"}}
	groups := `[{"id":101,"data":{"name":"Lab"}}]`
	f := newFixture(t, user, groups, map[int64]*fakeLibrary{101: group})

	summary, err := f.syncer.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.AccessDenied != 1 || summary.Synced != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if f.artifactExists("zotero.bib") {
		t.Fatal("no artifact may be written for a denied resource")
	}
	if _, err := os.Stat(f.cache.Path("zotero.bib")); err == nil {
		t.Fatal("no marker may be written for a denied resource")
	}
	if got := f.readArtifact(t, "101.bib"); got != "G" {
		t.Fatalf("group artifact missing or wrong: %q", got)
	}
}

func TestResourceFailureContinuesRun(t *testing.T) {
	user := &fakeLibrary{version: 3, status: http.StatusInternalServerError}
	group := &fakeLibrary{version: 5, pages: []string{"G"}}
	groups := `[{"id":101,"data":{"name":"Lab"}}]`
	f := newFixture(t, user, groups, map[int64]*fakeLibrary{101: group})

	summary, err := f.syncer.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.Failed != 1 || summary.Synced != 1 {
		t.Fatalf("failure must not stop the run: %+v", summary)
	}
	if f.artifactExists("zotero.bib") {
		t.Fatal("failed resource must not leave an artifact")
	}
}

func TestRunRecordsJournalOutcomes(t *testing.T) {
	user := &fakeLibrary{version: 9, pages: []string{"A", "B"}}
	f := newFixture(t, user, "[]", nil)

	summary, err := f.syncer.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.RunID == "" {
		t.Fatal("expected a journal run id")
	}

	outcomes, err := f.store.OutcomesForRun(context.Background(), summary.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if len(outcomes) != 1 {
		t.Fatalf("expected 1 outcome, got %d", len(outcomes))
	}
	got := outcomes[0]
	if got.Result != journal.OutcomeSynced || got.LatestVersion != 9 || got.Pages != 2 {
		t.Fatalf("unexpected outcome: %+v", got)
	}

	runs, err := f.store.RecentRuns(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || !runs[0].Finished() || runs[0].ResourcesTotal != 1 {
		t.Fatalf("run not finalized: %+v", runs)
	}
}

func TestSyncWorksWithoutJournal(t *testing.T) {
	user := &fakeLibrary{version: 2, pages: []string{"X"}}
	f := newFixture(t, user, "[]", nil)

	client := zotero.New(zotero.Config{
		BaseURL:           f.server.URL,
		UserID:            "42",
		BearerToken:       "token",
		RequestsPerSecond: 1000,
	}, nil)
	syncer := sync.New(client, f.cache, nil, f.dir, nil)

	summary, err := syncer.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.Synced != 1 || summary.RunID != "" {
		t.Fatalf("unexpected summary without journal: %+v", summary)
	}
}
