// Package capture produces CaptureRecords from the OS screen and window
// collaborators and manages the image files on disk.
package capture

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/yutanakamurajp/Miru-Log/internal/activity"
	"github.com/yutanakamurajp/Miru-Log/internal/storage"
)

// ErrSkipped is returned when a capture attempt was skipped, e.g. because the
// session locked between the scheduler's check and the snapshot.
var ErrSkipped = errors.New("capture skipped")

// Screen takes a screenshot and returns PNG bytes. Implementations honor
// context cancellation so a hung capture does not block shutdown.
type Screen interface {
	Snapshot(ctx context.Context) ([]byte, error)
}

// WindowInfo reports the foreground window title and application name.
type WindowInfo interface {
	ActiveWindow() (title, application string)
}

// Manager writes capture images under a per-day directory and builds the
// records handed to the store.
type Manager struct {
	captureRoot string
	archiveRoot string
	timezone    *time.Location
	screen      Screen
	window      WindowInfo
	lock        activity.LockChecker
	now         func() time.Time
}

// NewManager creates a capture Manager.
func NewManager(captureRoot, archiveRoot string, tz *time.Location, screen Screen, window WindowInfo, lock activity.LockChecker) *Manager {
	return &Manager{
		captureRoot: captureRoot,
		archiveRoot: archiveRoot,
		timezone:    tz,
		screen:      screen,
		window:      window,
		lock:        lock,
		now:         time.Now,
	}
}

// Capture takes a screenshot and returns an unpersisted CaptureRecord.
// Returns ErrSkipped if the session locked since the scheduler's check.
func (m *Manager) Capture(ctx context.Context) (*storage.CaptureRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.lock.Locked() {
		return nil, fmt.Errorf("%w: session is locked", ErrSkipped)
	}

	timestamp := m.now().In(m.timezone)
	folder := filepath.Join(m.captureRoot, timestamp.Format("2006-01-02"))
	if err := os.MkdirAll(folder, 0755); err != nil {
		return nil, fmt.Errorf("failed to create capture directory: %w", err)
	}

	// Timestamp slug plus a short uuid suffix so two captures within the
	// same second cannot collide.
	name := fmt.Sprintf("capture-%s-%s.png", timestamp.Format("20060102-150405"), uuid.New().String()[:8])
	path := filepath.Join(folder, name)

	image, err := m.screen.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to take screenshot: %w", err)
	}
	if err := os.WriteFile(path, image, 0644); err != nil {
		return nil, fmt.Errorf("failed to write capture image: %w", err)
	}

	title, application := m.window.ActiveWindow()
	digest, err := hashFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to hash capture image: %w", err)
	}

	return &storage.CaptureRecord{
		CapturedAt:        timestamp,
		ImagePath:         path,
		WindowTitle:       title,
		ActiveApplication: application,
		SessionState:      "active",
		Hash:              digest,
	}, nil
}

// Archive moves a capture image into the archive root, or deletes it when
// deleteOriginal is set. A missing source file is not an error.
func (m *Manager) Archive(record *storage.CaptureRecord, deleteOriginal bool) (string, error) {
	source := record.ImagePath

	if deleteOriginal {
		if err := os.Remove(source); err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to delete capture image: %w", err)
		}
		return "", nil
	}

	if _, err := os.Stat(source); os.IsNotExist(err) {
		return "", nil
	}

	targetFolder := filepath.Join(m.archiveRoot, record.CapturedAt.Format("2006-01-02"))
	if err := os.MkdirAll(targetFolder, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}
	target := filepath.Join(targetFolder, filepath.Base(source))
	if err := os.Rename(source, target); err != nil {
		return "", fmt.Errorf("failed to archive capture image: %w", err)
	}
	return target, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
