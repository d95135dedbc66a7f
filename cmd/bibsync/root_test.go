package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootShowsHelp(t *testing.T) {
	out, err := executeCommand(t)
	if err != nil {
		t.Fatalf("root command returned error: %v", err)
	}
	if !strings.Contains(out, "sync") || !strings.Contains(out, "history") {
		t.Fatalf("help should list subcommands: %q", out)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	out, err := executeCommand(t, "config", "init", "--config", path)
	if err != nil {
		t.Fatalf("config init returned error: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Fatalf("init should report the path: %q", out)
	}

	if _, err := executeCommand(t, "config", "init", "--config", path); err == nil {
		t.Fatal("second init without --force should fail")
	}
	if _, err := executeCommand(t, "config", "init", "--config", path, "--force"); err != nil {
		t.Fatalf("init --force returned error: %v", err)
	}

	out, err = executeCommand(t, "config", "show", "--config", path)
	if err != nil {
		t.Fatalf("config show returned error: %v", err)
	}
	if !strings.Contains(out, "[zotero]") {
		t.Fatalf("show should print TOML sections: %q", out)
	}
}

func TestConfigShowRedactsToken(t *testing.T) {
	t.Setenv("ZOTERO_BEARER_TOKEN", "super-secret")

	out, err := executeCommand(t, "config", "show", "--config", filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("config show returned error: %v", err)
	}
	if strings.Contains(out, "super-secret") {
		t.Fatal("bearer token must never be printed")
	}
	if !strings.Contains(out, "<redacted>") {
		t.Fatalf("expected redaction marker: %q", out)
	}
}

func TestSyncRequiresCredentials(t *testing.T) {
	t.Setenv("ZOTERO_USER_ID", "")
	t.Setenv("ZOTERO_BEARER_TOKEN", "")

	_, err := executeCommand(t, "sync", "--config", filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil {
		t.Fatal("sync without credentials must fail before any network call")
	}
	if !strings.Contains(err.Error(), "zotero.user_id") {
		t.Fatalf("expected credential error, got %v", err)
	}
}
