package sync_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bibsync/internal/sync"
	"bibsync/internal/versioncache"
	"bibsync/internal/zotero"
)

func TestResourcesEnumeration(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/42/groups/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":101,"data":{"name":"Lab"}},{"id":0},{"id":202}]`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := zotero.New(zotero.Config{
		BaseURL:           server.URL,
		UserID:            "42",
		BearerToken:       "token",
		RequestsPerSecond: 1000,
	}, nil)
	syncer := sync.New(client, versioncache.New(t.TempDir(), nil), nil, t.TempDir(), nil)

	resources, err := syncer.Resources(context.Background())
	if err != nil {
		t.Fatalf("Resources returned error: %v", err)
	}

	// Personal library first, then groups; the id-less group is skipped.
	if len(resources) != 3 {
		t.Fatalf("expected 3 resources, got %d: %+v", len(resources), resources)
	}
	if resources[0].OutputName != sync.DefaultOutputName {
		t.Fatalf("first resource must be the personal library: %+v", resources[0])
	}
	if !strings.Contains(resources[0].URL, "/users/42/items?v=3&format=biblatex") {
		t.Fatalf("unexpected user items url: %q", resources[0].URL)
	}
	if resources[1].OutputName != "101.bib" || resources[1].Label != "Lab" {
		t.Fatalf("unexpected group resource: %+v", resources[1])
	}
	if resources[2].OutputName != "202.bib" || resources[2].Label != "group 202" {
		t.Fatalf("unexpected group resource: %+v", resources[2])
	}
	if !strings.Contains(resources[1].URL, "/groups/101/items?v=3&format=biblatex") {
		t.Fatalf("unexpected group items url: %q", resources[1].URL)
	}
}

func TestResourcesEnumerationFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	client := zotero.New(zotero.Config{
		BaseURL:           server.URL,
		UserID:            "42",
		BearerToken:       "token",
		RequestsPerSecond: 1000,
	}, nil, zotero.WithSleeper(func(context.Context, time.Duration) error { return nil }))
	syncer := sync.New(client, versioncache.New(t.TempDir(), nil), nil, t.TempDir(), nil)

	if _, err := syncer.Resources(context.Background()); err == nil {
		t.Fatal("expected enumeration error when groups listing fails")
	}
}
