//go:build windows

package platform

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	showWindow           = user32.NewProc("ShowWindow")
	isIconic             = user32.NewProc("IsIconic")
	isWindowVisible      = user32.NewProc("IsWindowVisible")
	attachThreadInput    = user32.NewProc("AttachThreadInput")
	bringWindowToTop     = user32.NewProc("BringWindowToTop")
	setForegroundWindow  = user32.NewProc("SetForegroundWindow")
	getWindowTextW       = user32.NewProc("GetWindowTextW")
	getWindowTextLengthW = user32.NewProc("GetWindowTextLengthW")
)

const (
	swRestore                      = 9
	processQueryLimitedInformation = 0x1000
)

// WindowsFocus implements the WindowFocus interface with user32
type WindowsFocus struct{}

// NewWindowFocus creates a new Windows focus helper
func NewWindowFocus() WindowFocus {
	return &WindowsFocus{}
}

// ActiveWindow returns the current foreground window
func (f *WindowsFocus) ActiveWindow() (Window, error) {
	hwnd := windows.GetForegroundWindow()
	if hwnd == 0 {
		return Window{}, ErrNoActiveWindow
	}

	var pid uint32
	if _, err := windows.GetWindowThreadProcessId(hwnd, &pid); err != nil {
		return Window{}, fmt.Errorf("GetWindowThreadProcessId failed: %w", err)
	}

	return Window{
		PID:     int(pid),
		Handle:  uintptr(hwnd),
		AppName: processName(pid),
		Title:   windowText(hwnd),
	}, nil
}

// Activate restores and focuses the recorded window
func (f *WindowsFocus) Activate(w Window) error {
	hwnd := windows.HWND(w.Handle)
	if hwnd == 0 || !windows.IsWindow(hwnd) {
		return fmt.Errorf("window %s no longer exists", w)
	}
	return activateHWND(hwnd)
}

// ActivateByName focuses the first visible top-level window whose executable matches appName
func (f *WindowsFocus) ActivateByName(appName string) error {
	if appName == "" {
		return fmt.Errorf("empty application name")
	}

	found := findWindowByProcess(appName)
	if found == 0 {
		return fmt.Errorf("no window found for %s", appName)
	}
	return activateHWND(found)
}

// Callbacks created with windows.NewCallback are never released, so the
// EnumWindows procedure is created once and reads its target under enumMu.
var (
	enumOnce sync.Once
	enumProc uintptr

	enumMu     sync.Mutex
	enumTarget string
	enumFound  windows.HWND
)

func enumWindowsCallback() uintptr {
	enumOnce.Do(func() {
		enumProc = windows.NewCallback(func(hwnd windows.HWND, _ uintptr) uintptr {
			visible, _, _ := isWindowVisible.Call(uintptr(hwnd))
			if visible == 0 {
				return 1
			}
			var pid uint32
			if _, err := windows.GetWindowThreadProcessId(hwnd, &pid); err != nil {
				return 1
			}
			if strings.EqualFold(processName(pid), enumTarget) {
				enumFound = hwnd
				return 0
			}
			return 1
		})
	})
	return enumProc
}

// findWindowByProcess returns the first visible top-level window of the named executable
func findWindowByProcess(appName string) windows.HWND {
	cb := enumWindowsCallback()

	enumMu.Lock()
	defer enumMu.Unlock()

	enumTarget = appName
	enumFound = 0
	// EnumWindows reports an error when the callback stops enumeration early
	_ = windows.EnumWindows(cb, nil)
	return enumFound
}

func activateHWND(hwnd windows.HWND) error {
	if r, _, _ := isIconic.Call(uintptr(hwnd)); r != 0 {
		showWindow.Call(uintptr(hwnd), swRestore)
	}

	fg := windows.GetForegroundWindow()
	targetThread, _ := windows.GetWindowThreadProcessId(hwnd, nil)
	fgThread, _ := windows.GetWindowThreadProcessId(fg, nil)
	currentThread := windows.GetCurrentThreadId()

	if targetThread == 0 {
		return fmt.Errorf("failed to get target thread id")
	}

	// Windows only lets the foreground thread's input queue hand over focus
	attachThreadInput.Call(uintptr(fgThread), uintptr(currentThread), 1)
	attachThreadInput.Call(uintptr(targetThread), uintptr(currentThread), 1)

	bringWindowToTop.Call(uintptr(hwnd))
	ok, _, _ := setForegroundWindow.Call(uintptr(hwnd))

	attachThreadInput.Call(uintptr(fgThread), uintptr(currentThread), 0)
	attachThreadInput.Call(uintptr(targetThread), uintptr(currentThread), 0)

	if ok == 0 {
		return fmt.Errorf("SetForegroundWindow failed")
	}
	return nil
}

func processName(pid uint32) string {
	h, err := windows.OpenProcess(processQueryLimitedInformation, false, pid)
	if err != nil {
		return ""
	}
	defer windows.CloseHandle(h)

	buf := make([]uint16, windows.MAX_PATH)
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(h, 0, &buf[0], &size); err != nil {
		return ""
	}

	exe := filepath.Base(windows.UTF16ToString(buf[:size]))
	return strings.TrimSuffix(exe, filepath.Ext(exe))
}

func windowText(hwnd windows.HWND) string {
	n, _, _ := getWindowTextLengthW.Call(uintptr(hwnd))
	if n == 0 {
		return ""
	}
	buf := make([]uint16, n+1)
	getWindowTextW.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return windows.UTF16ToString(buf)
}
