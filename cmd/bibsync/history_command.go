package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"bibsync/internal/config"
	"bibsync/internal/journal"
)

func newHistoryCommand(configFlag *string) *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent sync runs from the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.LoadUnvalidated(*configFlag)
			if err != nil {
				return err
			}

			store, err := journal.Open(cfg.JournalPath())
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer store.Close()

			if runID != "" {
				return printOutcomes(cmd, store, runID)
			}
			return printRuns(cmd, store, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")
	cmd.Flags().StringVar(&runID, "run", "", "Show per-resource outcomes for one run id")
	return cmd
}

func printRuns(cmd *cobra.Command, store *journal.Store, limit int) error {
	runs, err := store.RecentRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		cmd.Println("No sync runs recorded yet.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		status := "interrupted"
		duration := ""
		if run.Finished() {
			status = "completed"
			duration = run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
		}
		rows = append(rows, []string{
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			status,
			duration,
			strconv.Itoa(run.ResourcesTotal),
			strconv.Itoa(run.ResourcesFailed),
		})
	}

	cmd.Println(renderTable(
		[]string{"Run", "Started", "Status", "Duration", "Resources", "Failed"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
	))
	return nil
}

func printOutcomes(cmd *cobra.Command, store *journal.Store, runID string) error {
	outcomes, err := store.OutcomesForRun(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if len(outcomes) == 0 {
		cmd.Printf("No outcomes recorded for run %s.\n", runID)
		return nil
	}

	rows := make([][]string, 0, len(outcomes))
	for _, outcome := range outcomes {
		versions := ""
		if outcome.Result == journal.OutcomeSynced || outcome.Result == journal.OutcomeUnchanged {
			versions = fmt.Sprintf("%d -> %d", outcome.CachedVersion, outcome.LatestVersion)
		}
		rows = append(rows, []string{
			outcome.Resource,
			outcome.Result,
			versions,
			strconv.Itoa(outcome.Pages),
			strconv.FormatInt(outcome.Bytes, 10),
			outcome.Duration.Round(time.Millisecond).String(),
			outcome.Detail,
		})
	}

	cmd.Println(renderTable(
		[]string{"Resource", "Outcome", "Versions", "Pages", "Bytes", "Duration", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
	))
	return nil
}
