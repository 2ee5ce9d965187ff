//go:build darwin

package platform

import (
	"bytes"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// DarwinFocus implements the WindowFocus interface through System Events.
// Requires the Accessibility permission.
type DarwinFocus struct{}

// NewWindowFocus creates a new macOS focus helper
func NewWindowFocus() WindowFocus {
	return &DarwinFocus{}
}

// ActiveWindow returns the frontmost application process
func (f *DarwinFocus) ActiveWindow() (Window, error) {
	out, err := runAppleScript(`
		tell application "System Events"
			set frontApp to first application process whose frontmost is true
			set appName to name of frontApp
			set appPID to unix id of frontApp
			try
				set windowTitle to name of first window of frontApp
			on error
				set windowTitle to ""
			end try
			return appName & "|||" & appPID & "|||" & windowTitle
		end tell
	`)
	if err != nil {
		return Window{}, fmt.Errorf("%w: %v", ErrNoActiveWindow, err)
	}
	return parseFrontmost(out)
}

// Activate brings the recorded process to the front
func (f *DarwinFocus) Activate(w Window) error {
	if w.PID <= 0 {
		return fmt.Errorf("invalid pid %d", w.PID)
	}
	script := fmt.Sprintf(`tell application "System Events" to set frontmost of (first process whose unix id is %d) to true`, w.PID)
	if _, err := runAppleScript(script); err != nil {
		return fmt.Errorf("failed to activate %s: %w", w, err)
	}
	return nil
}

// ActivateByName activates an application by its display name
func (f *DarwinFocus) ActivateByName(appName string) error {
	if appName == "" {
		return fmt.Errorf("empty application name")
	}
	script := fmt.Sprintf(`tell application "%s" to activate`, strings.ReplaceAll(appName, `"`, `\"`))
	if _, err := runAppleScript(script); err != nil {
		return fmt.Errorf("failed to focus app %s: %w", appName, err)
	}
	return nil
}

func parseFrontmost(out string) (Window, error) {
	parts := strings.SplitN(strings.TrimSpace(out), "|||", 3)
	if len(parts) < 2 || parts[0] == "" {
		return Window{}, fmt.Errorf("%w: unexpected osascript output %q", ErrNoActiveWindow, out)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Window{}, fmt.Errorf("invalid pid %q: %w", parts[1], err)
	}
	w := Window{PID: pid, AppName: parts[0]}
	if len(parts) == 3 {
		w.Title = parts[2]
	}
	return w, nil
}

func runAppleScript(script string) (string, error) {
	cmd := exec.Command("osascript", "-e", script)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(errb.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("%s", msg)
	}
	return out.String(), nil
}
