package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/yutanakamurajp/Miru-Log/internal/storage"
	"github.com/yutanakamurajp/Miru-Log/internal/summary"
)

// topTasksKept is how many tasks are reported individually in the per-task
// duration breakdown; the rest collapse into "other".
const topTasksKept = 8

var summarizeDate string

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Build the daily summary artifact for a date",
	RunE:  runSummarize,
}

func init() {
	summarizeCmd.Flags().StringVar(&summarizeDate, "date", "", "Target date YYYY-MM-DD (defaults to today)")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	db, store, err := openStore()
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	return summarizeDay(context.Background(), store, summarizeDate)
}

func summarizeDay(ctx context.Context, store storage.ObservationStore, date string) error {
	if date == "" {
		date = time.Now().In(cfg.Timezone).Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("invalid date %q: %w", date, err)
	}

	observations, err := store.DailyObservations(ctx, date)
	if err != nil {
		return err
	}
	if len(observations) == 0 {
		slog.Warn("No analyzed captures for date", "date", date)
		return nil
	}

	daily := summary.BuildDailySummary(observations, date, cfg.Capture.Interval)

	path, err := summary.WriteJSON(daily, cfg.SummaryDir)
	if err != nil {
		return err
	}
	slog.Info("Daily summary saved",
		"path", path,
		"segments", len(daily.Segments),
		"active_minutes", daily.TotalActiveMinutes,
	)

	for _, total := range summary.AggregateTaskTotals(daily.Segments, topTasksKept) {
		slog.Info("Task total", "task", total.Task, "minutes", total.Minutes)
	}
	return nil
}
