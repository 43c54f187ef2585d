package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yutanakamurajp/Miru-Log/internal/analysis"
	"github.com/yutanakamurajp/Miru-Log/internal/capture"
	"github.com/yutanakamurajp/Miru-Log/internal/platform"
	"github.com/yutanakamurajp/Miru-Log/internal/storage"
)

var (
	analyzeLimit      int
	analyzeUntilEmpty bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze pending captures with the vision model",
	Long: `Pull pending captures in bounded batches and classify each with the
configured vision backend. Rate-limit exhaustion stops the run; other
per-capture failures are logged and skipped.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().IntVar(&analyzeLimit, "limit", 20, "Maximum pending captures per batch")
	analyzeCmd.Flags().BoolVar(&analyzeUntilEmpty, "until-empty", false, "Keep analyzing in batches until no pending captures remain")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, store, err := openStore()
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	return analyzePending(ctx, store, analyzeLimit, analyzeUntilEmpty)
}

func analyzePending(ctx context.Context, store storage.ObservationStore, limit int, untilEmpty bool) error {
	analyzer, err := newAnalyzer(ctx)
	if err != nil {
		return err
	}

	indexer, err := newSearchIndexer(ctx)
	if err != nil {
		return err
	}

	lock := platform.NewLockChecker(cfg.Capture.DisableLockDetection)
	manager := capture.NewManager(
		cfg.Capture.CaptureRoot,
		cfg.Capture.ArchiveRoot,
		cfg.Timezone,
		platform.NewScreen(),
		platform.NewWindowInfo(),
		lock,
	)

	runner := analysis.NewRunner(store, analyzer, manager, indexer, limit, cfg.Capture.DeleteAfterAnalysis)
	return runner.Run(ctx, untilEmpty)
}
