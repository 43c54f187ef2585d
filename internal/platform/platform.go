// Package platform provides the OS-facing collaborators: screenshots,
// foreground-window metadata, session-lock state, and global input events.
// The implementations here are portable fallbacks; OS-specific versions can
// replace them behind the same interfaces.
package platform

import (
	"context"
	"fmt"

	"github.com/yutanakamurajp/Miru-Log/internal/activity"
	"github.com/yutanakamurajp/Miru-Log/internal/capture"
)

type unsupportedScreen struct{}

func (unsupportedScreen) Snapshot(context.Context) ([]byte, error) {
	return nil, fmt.Errorf("screen capture is not supported on this platform")
}

type unknownWindow struct{}

func (unknownWindow) ActiveWindow() (string, string) {
	return "Unknown", "Unknown"
}

// NewScreen returns the platform screenshot source.
func NewScreen() capture.Screen {
	return unsupportedScreen{}
}

// NewWindowInfo returns the platform foreground-window reader.
func NewWindowInfo() capture.WindowInfo {
	return unknownWindow{}
}

// NewLockChecker returns the platform session-lock oracle. When disabled is
// set the checker always reports unlocked, the escape hatch for environments
// where lock detection misbehaves. The portable build has no lock detection,
// so both paths report unlocked.
func NewLockChecker(disabled bool) activity.LockChecker {
	return activity.NoLock
}

// NewInputListener returns the platform global input listener.
func NewInputListener() activity.InputListener {
	return activity.NopListener{}
}
