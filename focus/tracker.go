// Package focus remembers the window that was focused when a capture started
// and brings it back before the result is pasted.
package focus

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"markestedt/langra/platform"
)

var (
	// ErrNoPreviousWindow is returned when no window has been remembered
	ErrNoPreviousWindow = errors.New("no previous window recorded")
	// ErrFocusFailed is returned when neither activation path succeeded
	ErrFocusFailed = errors.New("failed to focus previous window")
)

// Tracker owns the single previous-window slot
type Tracker struct {
	mu       sync.Mutex
	os       platform.WindowFocus
	selfPID  int
	previous *platform.Window
	logger   *slog.Logger
}

// NewTracker creates a tracker that never records windows of the current process
func NewTracker(wf platform.WindowFocus) *Tracker {
	return NewTrackerForPID(wf, os.Getpid())
}

// NewTrackerForPID creates a tracker excluding windows owned by selfPID
func NewTrackerForPID(wf platform.WindowFocus, selfPID int) *Tracker {
	return &Tracker{
		os:      wf,
		selfPID: selfPID,
		logger:  slog.Default().With("component", "focus"),
	}
}

// Remember snapshots the focused window. Failures and our own windows leave the slot unchanged.
func (t *Tracker) Remember() {
	w, err := t.os.ActiveWindow()
	if err != nil {
		t.logger.Warn("Failed to get active window", "error", err)
		return
	}

	if w.PID == t.selfPID {
		t.logger.Debug("Active window belongs to this process, not saving", "app", w.AppName)
		return
	}

	t.mu.Lock()
	t.previous = &w
	t.mu.Unlock()

	t.logger.Info("Saved previous window", "app", w.AppName, "pid", w.PID)
}

// Previous returns the remembered window, if any
func (t *Tracker) Previous() (platform.Window, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.previous == nil {
		return platform.Window{}, false
	}
	return *t.previous, true
}

// FocusPrevious activates the remembered window, falling back to activation by app name
func (t *Tracker) FocusPrevious() error {
	w, ok := t.Previous()
	if !ok {
		return ErrNoPreviousWindow
	}

	err := t.os.Activate(w)
	if err == nil {
		return nil
	}
	t.logger.Warn("Direct activation failed, trying by name", "app", w.AppName, "error", err)

	if w.AppName == "" {
		return fmt.Errorf("%w: %v", ErrFocusFailed, err)
	}
	if nameErr := t.os.ActivateByName(w.AppName); nameErr != nil {
		return fmt.Errorf("%w: %v; %v", ErrFocusFailed, err, nameErr)
	}
	return nil
}
