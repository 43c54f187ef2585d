package main

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yutanakamurajp/Miru-Log/internal/activity"
	"github.com/yutanakamurajp/Miru-Log/internal/capture"
	"github.com/yutanakamurajp/Miru-Log/internal/observer"
	"github.com/yutanakamurajp/Miru-Log/internal/platform"
)

var observeCmd = &cobra.Command{
	Use:   "observe",
	Short: "Run the capture scheduler loop",
	Long: `Run the capture loop: every interval, check session lock and idle state,
take a screenshot when the user is active, and persist the capture for later
analysis. Stops on SIGINT/SIGTERM.`,
	RunE: runObserve,
}

func runObserve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, store, err := openStore()
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	lock := platform.NewLockChecker(cfg.Capture.DisableLockDetection)
	monitor := activity.NewMonitor(cfg.Capture.IdleThreshold, lock)

	listener := platform.NewInputListener()
	if err := listener.Start(monitor.Touch); err != nil {
		slog.Warn("Input listener unavailable; idleness falls back to lock state", "error", err)
	}
	defer listener.Stop()

	manager := capture.NewManager(
		cfg.Capture.CaptureRoot,
		cfg.Capture.ArchiveRoot,
		cfg.Timezone,
		platform.NewScreen(),
		platform.NewWindowInfo(),
		lock,
	)

	scheduler := observer.NewScheduler(cfg.Capture.Interval, monitor, manager, store)
	if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
