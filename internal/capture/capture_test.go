package capture

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yutanakamurajp/Miru-Log/internal/activity"
)

type fakeScreen struct {
	image []byte
	err   error
}

func (f *fakeScreen) Snapshot(context.Context) ([]byte, error) {
	return f.image, f.err
}

type fakeWindow struct {
	title string
	app   string
}

func (f *fakeWindow) ActiveWindow() (string, string) {
	return f.title, f.app
}

func newTestManager(t *testing.T, lock activity.LockChecker) (*Manager, string) {
	t.Helper()
	root := t.TempDir()
	m := NewManager(
		filepath.Join(root, "captures"),
		filepath.Join(root, "archive"),
		time.UTC,
		&fakeScreen{image: []byte("png data")},
		&fakeWindow{title: "main.go - Visual Studio Code", app: "Code"},
		lock,
	)
	m.now = func() time.Time {
		return time.Date(2026, 8, 29, 14, 30, 5, 0, time.UTC)
	}
	return m, root
}

func TestManager_Capture(t *testing.T) {
	m, root := newTestManager(t, activity.NoLock)

	record, err := m.Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}

	if record.WindowTitle != "main.go - Visual Studio Code" {
		t.Errorf("WindowTitle = %q", record.WindowTitle)
	}
	if record.ActiveApplication != "Code" {
		t.Errorf("ActiveApplication = %q", record.ActiveApplication)
	}
	if record.SessionState != "active" {
		t.Errorf("SessionState = %q, want active", record.SessionState)
	}

	// Image lives under a per-day directory with a timestamped name.
	wantDir := filepath.Join(root, "captures", "2026-08-29")
	if filepath.Dir(record.ImagePath) != wantDir {
		t.Errorf("ImagePath dir = %q, want %q", filepath.Dir(record.ImagePath), wantDir)
	}
	base := filepath.Base(record.ImagePath)
	if !strings.HasPrefix(base, "capture-20260829-143005-") || !strings.HasSuffix(base, ".png") {
		t.Errorf("ImagePath base = %q", base)
	}

	data, err := os.ReadFile(record.ImagePath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "png data" {
		t.Errorf("image content = %q", data)
	}

	sum := sha256.Sum256([]byte("png data"))
	if record.Hash != hex.EncodeToString(sum[:]) {
		t.Errorf("Hash = %q, want sha256 of image", record.Hash)
	}
}

func TestManager_Capture_UniqueNames(t *testing.T) {
	m, _ := newTestManager(t, activity.NoLock)

	// Same frozen timestamp; the uuid suffix must keep paths distinct.
	first, err := m.Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	second, err := m.Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	if first.ImagePath == second.ImagePath {
		t.Errorf("two captures share path %q", first.ImagePath)
	}
}

func TestManager_Capture_LockedSkips(t *testing.T) {
	m, _ := newTestManager(t, activity.LockCheckerFunc(func() bool { return true }))

	_, err := m.Capture(context.Background())
	if !errors.Is(err, ErrSkipped) {
		t.Errorf("Capture() error = %v, want ErrSkipped", err)
	}
}

func TestManager_Capture_CancelledContext(t *testing.T) {
	m, _ := newTestManager(t, activity.NoLock)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Capture(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Capture() error = %v, want context.Canceled", err)
	}
}

func TestManager_Capture_ScreenError(t *testing.T) {
	m, _ := newTestManager(t, activity.NoLock)
	m.screen = &fakeScreen{err: errors.New("no display")}

	_, err := m.Capture(context.Background())
	if err == nil {
		t.Fatal("Capture() expected error, got nil")
	}
	if errors.Is(err, ErrSkipped) {
		t.Error("screen failure must not be classified as a skip")
	}
}

func TestManager_Archive_Move(t *testing.T) {
	m, root := newTestManager(t, activity.NoLock)

	record, err := m.Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}

	target, err := m.Archive(record, false)
	if err != nil {
		t.Fatalf("Archive() error = %v", err)
	}

	wantDir := filepath.Join(root, "archive", "2026-08-29")
	if filepath.Dir(target) != wantDir {
		t.Errorf("archive target dir = %q, want %q", filepath.Dir(target), wantDir)
	}
	if _, err := os.Stat(record.ImagePath); !os.IsNotExist(err) {
		t.Error("original image still exists after archiving")
	}
	if _, err := os.Stat(target); err != nil {
		t.Errorf("archived image missing: %v", err)
	}
}

func TestManager_Archive_Delete(t *testing.T) {
	m, _ := newTestManager(t, activity.NoLock)

	record, err := m.Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}

	target, err := m.Archive(record, true)
	if err != nil {
		t.Fatalf("Archive() error = %v", err)
	}
	if target != "" {
		t.Errorf("Archive() target = %q, want empty on delete", target)
	}
	if _, err := os.Stat(record.ImagePath); !os.IsNotExist(err) {
		t.Error("image still exists after delete")
	}
}

func TestManager_Archive_MissingSource(t *testing.T) {
	m, _ := newTestManager(t, activity.NoLock)

	record, err := m.Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	if err := os.Remove(record.ImagePath); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	// Already archived or cleaned up externally; both dispositions tolerate it.
	if _, err := m.Archive(record, false); err != nil {
		t.Errorf("Archive(move) error = %v, want nil for missing source", err)
	}
	if _, err := m.Archive(record, true); err != nil {
		t.Errorf("Archive(delete) error = %v, want nil for missing source", err)
	}
}
