// Package observer runs the capture scheduler loop.
package observer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/yutanakamurajp/Miru-Log/internal/activity"
	"github.com/yutanakamurajp/Miru-Log/internal/capture"
	"github.com/yutanakamurajp/Miru-Log/internal/storage"
)

// skipLogInterval is how long identical skip reasons are suppressed in the log.
const skipLogInterval = 60 * time.Second

type skipReason string

const (
	skipLocked  skipReason = "locked"
	skipIdle    skipReason = "idle"
	skipCapture skipReason = "capture_skipped"
)

// Scheduler decides on each tick whether to take a capture and hands
// successful captures to the store.
type Scheduler struct {
	interval time.Duration
	monitor  *activity.Monitor
	manager  *capture.Manager
	store    storage.ObservationStore

	now            func() time.Time
	lastSkipReason skipReason
	lastSkipLogAt  time.Time
}

// NewScheduler creates a capture Scheduler.
func NewScheduler(interval time.Duration, monitor *activity.Monitor, manager *capture.Manager, store storage.ObservationStore) *Scheduler {
	return &Scheduler{
		interval: interval,
		monitor:  monitor,
		manager:  manager,
		store:    store,
		now:      time.Now,
	}
}

// Run executes the capture loop until the context is cancelled. The first
// tick fires after one interval; cancellation interrupts the wait.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("Observer started", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Observer stopped")
			return ctx.Err()
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one scheduling decision: locked skip, idle skip, or capture.
func (s *Scheduler) Tick(ctx context.Context) {
	if s.monitor.Locked() {
		s.logSkip(skipLocked, "Skipping capture: session is locked")
		return
	}

	if s.monitor.IsIdle() {
		s.logSkip(skipIdle, "Skipping capture: idle", "last_activity", s.monitor.LastActivity())
		return
	}

	record, err := s.manager.Capture(ctx)
	if err != nil {
		if errors.Is(err, capture.ErrSkipped) {
			// Surface at INFO so users can diagnose "no captures" quickly.
			s.logSkip(skipCapture, "Skipping capture", "reason", err)
			return
		}
		slog.Error("Failed to capture screenshot", "error", err)
		return
	}
	s.lastSkipReason = ""

	id, err := s.store.AddCapture(ctx, record)
	if err != nil {
		slog.Error("Failed to persist capture", "error", err)
		return
	}
	slog.Debug("Capture persisted", "id", id, "window", record.WindowTitle)
}

// logSkip logs a skip reason, collapsing duplicates within skipLogInterval.
func (s *Scheduler) logSkip(reason skipReason, msg string, args ...any) {
	now := s.now()
	if s.lastSkipReason == reason && now.Sub(s.lastSkipLogAt) < skipLogInterval {
		return
	}
	s.lastSkipReason = reason
	s.lastSkipLogAt = now
	slog.Info(msg, args...)
}
