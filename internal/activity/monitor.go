// Package activity tracks interactive-session state: the most recent input
// event and whether the session is locked.
package activity

import (
	"sync"
	"time"
)

// LockChecker reports whether the interactive session is currently locked.
// Implementations are OS-specific; NoLock is the portable fallback.
type LockChecker interface {
	Locked() bool
}

// LockCheckerFunc adapts a function to the LockChecker interface.
type LockCheckerFunc func() bool

// Locked reports whether the session is locked.
func (f LockCheckerFunc) Locked() bool { return f() }

// NoLock is a LockChecker that always reports unlocked. It is used on
// platforms without lock detection and when detection is disabled via config.
var NoLock = LockCheckerFunc(func() bool { return false })

// Monitor tracks the last observed input event. Touch is safe to call from
// input-listener goroutines while the scheduler polls IsIdle on a timer.
type Monitor struct {
	idleThreshold time.Duration
	lock          LockChecker
	now           func() time.Time

	mu           sync.Mutex
	lastActivity time.Time
}

// NewMonitor creates a Monitor. The last-activity timestamp starts at the
// current time so a freshly started process is not immediately idle.
func NewMonitor(idleThreshold time.Duration, lock LockChecker) *Monitor {
	return newMonitor(idleThreshold, lock, time.Now)
}

func newMonitor(idleThreshold time.Duration, lock LockChecker, now func() time.Time) *Monitor {
	return &Monitor{
		idleThreshold: idleThreshold,
		lock:          lock,
		now:           now,
		lastActivity:  now(),
	}
}

// Touch records an input event. Called from listener callbacks.
func (m *Monitor) Touch() {
	m.mu.Lock()
	m.lastActivity = m.now()
	m.mu.Unlock()
}

// LastActivity returns the most recent observed input timestamp.
func (m *Monitor) LastActivity() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastActivity
}

// IsIdle reports whether the session has been without input longer than the
// idle threshold, or is locked.
func (m *Monitor) IsIdle() bool {
	last := m.LastActivity()
	if m.now().Sub(last) > m.idleThreshold {
		return true
	}
	return m.Locked()
}

// Locked reports the session lock state.
func (m *Monitor) Locked() bool {
	return m.lock.Locked()
}
