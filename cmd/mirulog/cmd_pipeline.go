package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	pipelineDate        string
	pipelineLimit       int
	pipelineUntilEmpty  bool
	pipelineSkipAnalyze bool
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run analyze then summarize for a date",
	Long: `Run the full pipeline: analyze pending captures, then build the daily
summary artifact. Analyzer failure aborts before summarization.`,
	RunE: runPipeline,
}

func init() {
	pipelineCmd.Flags().StringVar(&pipelineDate, "date", "", "Target date YYYY-MM-DD (defaults to today)")
	pipelineCmd.Flags().IntVar(&pipelineLimit, "limit", 20, "Maximum pending captures per batch")
	pipelineCmd.Flags().BoolVar(&pipelineUntilEmpty, "until-empty", false, "Keep analyzing in batches until no pending captures remain")
	pipelineCmd.Flags().BoolVar(&pipelineSkipAnalyze, "skip-analyze", false, "Skip the analysis step (only summarize)")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, store, err := openStore()
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	if pipelineSkipAnalyze {
		slog.Info("Analysis step skipped")
	} else {
		if err := analyzePending(ctx, store, pipelineLimit, pipelineUntilEmpty); err != nil {
			return err
		}
	}

	return summarizeDay(ctx, store, pipelineDate)
}
