package observer

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/yutanakamurajp/Miru-Log/internal/activity"
	"github.com/yutanakamurajp/Miru-Log/internal/capture"
	"github.com/yutanakamurajp/Miru-Log/internal/storage"
	"github.com/yutanakamurajp/Miru-Log/internal/storage/mocks"
)

type fakeScreen struct {
	err error
}

func (f *fakeScreen) Snapshot(context.Context) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("png data"), nil
}

type fakeWindow struct{}

func (fakeWindow) ActiveWindow() (string, string) {
	return "terminal", "Terminal"
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(previous) })
	return &buf
}

func newTestScheduler(t *testing.T, lock activity.LockChecker, idleThreshold time.Duration, store storage.ObservationStore) *Scheduler {
	t.Helper()
	root := t.TempDir()
	monitor := activity.NewMonitor(idleThreshold, lock)
	manager := capture.NewManager(root+"/captures", root+"/archive", time.UTC, &fakeScreen{}, fakeWindow{}, lock)
	return NewScheduler(time.Minute, monitor, manager, store)
}

func TestScheduler_Tick_Captures(t *testing.T) {
	captureLogs(t)
	ctrl := gomock.NewController(t)
	store := mocks.NewMockObservationStore(ctrl)

	store.EXPECT().
		AddCapture(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, record *storage.CaptureRecord) (int64, error) {
			if record.WindowTitle != "terminal" {
				t.Errorf("WindowTitle = %q, want terminal", record.WindowTitle)
			}
			return 1, nil
		})

	s := newTestScheduler(t, activity.NoLock, time.Hour, store)
	s.Tick(context.Background())
}

func TestScheduler_Tick_LockedSkips(t *testing.T) {
	logs := captureLogs(t)
	ctrl := gomock.NewController(t)
	store := mocks.NewMockObservationStore(ctrl)
	// No AddCapture expected.

	lock := activity.LockCheckerFunc(func() bool { return true })
	s := newTestScheduler(t, lock, time.Hour, store)
	s.Tick(context.Background())

	if !strings.Contains(logs.String(), "session is locked") {
		t.Errorf("expected locked skip log, got: %s", logs.String())
	}
}

func TestScheduler_Tick_IdleSkips(t *testing.T) {
	logs := captureLogs(t)
	ctrl := gomock.NewController(t)
	store := mocks.NewMockObservationStore(ctrl)

	// Sub-millisecond threshold makes the session idle immediately.
	s := newTestScheduler(t, activity.NoLock, time.Nanosecond, store)
	time.Sleep(5 * time.Millisecond)
	s.Tick(context.Background())

	if !strings.Contains(logs.String(), "idle") {
		t.Errorf("expected idle skip log, got: %s", logs.String())
	}
}

func TestScheduler_Tick_PersistFailureLogged(t *testing.T) {
	logs := captureLogs(t)
	ctrl := gomock.NewController(t)
	store := mocks.NewMockObservationStore(ctrl)

	store.EXPECT().
		AddCapture(gomock.Any(), gomock.Any()).
		Return(int64(0), errors.New("disk full"))

	s := newTestScheduler(t, activity.NoLock, time.Hour, store)
	s.Tick(context.Background())

	if !strings.Contains(logs.String(), "Failed to persist capture") {
		t.Errorf("expected persistence error log, got: %s", logs.String())
	}
}

func TestScheduler_LogSkip_CollapsesDuplicates(t *testing.T) {
	logs := captureLogs(t)
	ctrl := gomock.NewController(t)
	store := mocks.NewMockObservationStore(ctrl)

	lock := activity.LockCheckerFunc(func() bool { return true })
	s := newTestScheduler(t, lock, time.Hour, store)

	now := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.Tick(context.Background())
	now = now.Add(10 * time.Second)
	s.Tick(context.Background())
	now = now.Add(10 * time.Second)
	s.Tick(context.Background())

	if got := strings.Count(logs.String(), "session is locked"); got != 1 {
		t.Errorf("locked skip logged %d times within cooldown, want 1", got)
	}

	// After the cooldown the reason is logged again.
	now = now.Add(skipLogInterval)
	s.Tick(context.Background())
	if got := strings.Count(logs.String(), "session is locked"); got != 2 {
		t.Errorf("locked skip logged %d times after cooldown, want 2", got)
	}
}

func TestScheduler_LogSkip_ReasonChangeLogsImmediately(t *testing.T) {
	logs := captureLogs(t)
	ctrl := gomock.NewController(t)
	store := mocks.NewMockObservationStore(ctrl)

	locked := true
	lock := activity.LockCheckerFunc(func() bool { return locked })
	s := newTestScheduler(t, lock, time.Nanosecond, store)

	now := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.Tick(context.Background())
	if !strings.Contains(logs.String(), "session is locked") {
		t.Fatalf("expected locked skip log, got: %s", logs.String())
	}

	// Unlock; the stale last-activity timestamp now reads as idle. The new
	// reason must log immediately, cooldown or not.
	locked = false
	time.Sleep(5 * time.Millisecond)
	now = now.Add(time.Second)
	s.Tick(context.Background())

	if !strings.Contains(logs.String(), "Skipping capture: idle") {
		t.Errorf("expected idle skip log after reason change, got: %s", logs.String())
	}
}

func TestScheduler_Run_StopsOnCancel(t *testing.T) {
	captureLogs(t)
	ctrl := gomock.NewController(t)
	store := mocks.NewMockObservationStore(ctrl)

	lock := activity.LockCheckerFunc(func() bool { return true })
	root := t.TempDir()
	monitor := activity.NewMonitor(time.Hour, lock)
	manager := capture.NewManager(root+"/captures", root+"/archive", time.UTC, &fakeScreen{}, fakeWindow{}, lock)
	s := NewScheduler(5*time.Millisecond, monitor, manager, store)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := s.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want context.DeadlineExceeded", err)
	}
}
