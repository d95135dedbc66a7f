package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"bibsync/internal/config"
	"bibsync/internal/journal"
	"bibsync/internal/logging"
	"bibsync/internal/preflight"
	"bibsync/internal/sync"
	"bibsync/internal/versioncache"
	"bibsync/internal/zotero"
)

func newSyncCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Fetch the user library and all group libraries that changed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(*configFlag)
			if err != nil {
				return err
			}

			logger, err := logging.New(logging.Options{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
				Writer: os.Stdout,
			})
			if err != nil {
				return err
			}

			return runSync(cmd, cfg, logger)
		},
	}
}

func runSync(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	if failure, failed := preflight.FirstFailure(preflight.Check(cfg)); failed {
		return fmt.Errorf("preflight: %s: %s", failure.Name, failure.Detail)
	}

	// Scheduled runs can overlap when the API is slow; the loser exits
	// instead of racing the winner's artifact writes.
	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another bibsync run holds %s", cfg.LockPath())
	}
	defer func() { _ = lock.Unlock() }()

	store, err := journal.Open(cfg.JournalPath())
	if err != nil {
		logger.Warn("run journal unavailable, continuing without history",
			logging.Error(err))
		store = nil
	} else {
		defer store.Close()
	}

	client := zotero.New(zotero.Config{
		BaseURL:           cfg.Zotero.BaseURL,
		UserID:            cfg.Zotero.UserID,
		BearerToken:       cfg.Zotero.BearerToken,
		RequestTimeout:    time.Duration(cfg.Zotero.RequestTimeoutSeconds) * time.Second,
		ConnectTimeout:    time.Duration(cfg.Zotero.ConnectTimeoutSeconds) * time.Second,
		RetryAttempts:     cfg.Zotero.RetryAttempts,
		RequestsPerSecond: cfg.Zotero.RequestsPerSecond,
	}, logger)

	cache := versioncache.New(cfg.Paths.BibliographyDir, logger)
	syncer := sync.New(client, cache, store, cfg.Paths.BibliographyDir, logger)

	if _, err := syncer.Run(cmd.Context()); err != nil {
		return err
	}
	return nil
}
