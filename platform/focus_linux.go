//go:build linux

package platform

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// X11Focus implements the WindowFocus interface with xdotool.
// Wayland compositors do not expose other clients' windows.
type X11Focus struct{}

// NewWindowFocus creates a new X11 focus helper
func NewWindowFocus() WindowFocus {
	return &X11Focus{}
}

// ActiveWindow returns the window named by _NET_ACTIVE_WINDOW
func (f *X11Focus) ActiveWindow() (Window, error) {
	idStr, err := xdotool("getactivewindow")
	if err != nil {
		return Window{}, fmt.Errorf("%w: %v", ErrNoActiveWindow, err)
	}
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return Window{}, fmt.Errorf("invalid window id %q: %w", idStr, err)
	}

	pidStr, err := xdotool("getwindowpid", idStr)
	if err != nil {
		return Window{}, fmt.Errorf("failed to get window pid: %w", err)
	}
	pid, err := strconv.Atoi(pidStr)
	if err != nil {
		return Window{}, fmt.Errorf("invalid pid %q: %w", pidStr, err)
	}

	title, _ := xdotool("getwindowname", idStr)

	return Window{
		PID:     pid,
		Handle:  uintptr(id),
		AppName: commName(pid),
		Title:   title,
	}, nil
}

// Activate sends _NET_ACTIVE_WINDOW for the recorded window and waits for it
func (f *X11Focus) Activate(w Window) error {
	if w.Handle == 0 {
		return fmt.Errorf("window %s has no X11 id", w)
	}
	if _, err := xdotool("windowactivate", "--sync", strconv.FormatUint(uint64(w.Handle), 10)); err != nil {
		return fmt.Errorf("failed to activate %s: %w", w, err)
	}
	return nil
}

// ActivateByName activates the first visible window whose WM_CLASS matches appName
func (f *X11Focus) ActivateByName(appName string) error {
	if appName == "" {
		return fmt.Errorf("empty application name")
	}
	if _, err := xdotool("search", "--onlyvisible", "--class", appName, "windowactivate"); err != nil {
		return fmt.Errorf("failed to focus app %s: %w", appName, err)
	}
	return nil
}

func xdotool(args ...string) (string, error) {
	out, err := exec.Command("xdotool", args...).Output()
	if err != nil {
		return "", fmt.Errorf("xdotool %s: %w", args[0], err)
	}
	return strings.TrimSpace(string(out)), nil
}

func commName(pid int) string {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/comm", pid))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
