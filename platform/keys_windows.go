//go:build windows

package platform

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	setWindowsHookEx    = user32.NewProc("SetWindowsHookExW")
	callNextHookEx      = user32.NewProc("CallNextHookEx")
	unhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	getMessage          = user32.NewProc("GetMessageW")
	postThreadMessage   = user32.NewProc("PostThreadMessageW")
	getCurrentThreadID  = kernel32.NewProc("GetCurrentThreadId")
)

const (
	whKeyboardLL = 13
	wmKeydown    = 0x0100
	wmKeyup      = 0x0101
	wmSyskeydown = 0x0104
	wmSyskeyup   = 0x0105
	wmQuit       = 0x0012

	llkhfInjected = 0x00000010
)

const (
	vkControl  = 0x11
	vkLControl = 0xA2
	vkRControl = 0xA3
	vkC        = 0x43
	vkV        = 0x56
)

type kbdllhookstruct struct {
	vkCode      uint32
	scanCode    uint32
	flags       uint32
	time        uint32
	dwExtraInfo uintptr
}

type msg struct {
	hwnd    uintptr
	message uint32
	wParam  uintptr
	lParam  uintptr
	time    uint32
	pt      struct{ x, y int32 }
}

// WindowsKeyListener observes keys through a low-level keyboard hook.
// The hook never swallows events: every event is passed on with CallNextHookEx.
type WindowsKeyListener struct {
	mu       sync.Mutex
	events   chan KeyEvent
	hook     uintptr
	threadID uintptr
}

// NewKeyListener creates a new Windows key listener
func NewKeyListener() KeyListener {
	return &WindowsKeyListener{}
}

// Listen installs the hook on a dedicated OS thread and streams normalized events
func (l *WindowsKeyListener) Listen(ctx context.Context) (<-chan KeyEvent, error) {
	l.mu.Lock()
	l.events = make(chan KeyEvent, 64)
	l.mu.Unlock()

	errCh := make(chan error, 1)
	go l.runHook(errCh)

	select {
	case err := <-errCh:
		if err != nil {
			return nil, err
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	go func() {
		<-ctx.Done()
		l.mu.Lock()
		threadID := l.threadID
		l.mu.Unlock()
		// Wakes GetMessage so the hook thread can unhook and exit
		postThreadMessage.Call(threadID, wmQuit, 0, 0)
	}()

	return l.events, nil
}

func (l *WindowsKeyListener) runHook(errCh chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	hookProc := func(nCode uintptr, wParam uintptr, lParam uintptr) uintptr {
		if int32(nCode) >= 0 {
			kbInfo := (*kbdllhookstruct)(unsafe.Pointer(lParam))
			l.handleKeyEvent(wParam, kbInfo)
		}
		r, _, _ := callNextHookEx.Call(0, nCode, wParam, lParam)
		return r
	}

	hook, _, err := setWindowsHookEx.Call(
		whKeyboardLL,
		windows.NewCallback(hookProc),
		0,
		0,
	)
	if hook == 0 {
		errCh <- fmt.Errorf("%w: SetWindowsHookEx failed: %v", ErrPermissionDenied, err)
		return
	}

	tid, _, _ := getCurrentThreadID.Call()

	l.mu.Lock()
	l.hook = hook
	l.threadID = tid
	l.mu.Unlock()

	errCh <- nil

	// Message loop; the hook procedure is only invoked while this thread pumps messages
	var m msg
	for {
		r, _, _ := getMessage.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if int32(r) <= 0 {
			break
		}
	}

	unhookWindowsHookEx.Call(hook)
	close(l.events)
}

// handleKeyEvent runs on the hook callback path and must return quickly
func (l *WindowsKeyListener) handleKeyEvent(wParam uintptr, kbInfo *kbdllhookstruct) {
	// Our own SendInput chords must not feed back into the detector
	if kbInfo.flags&llkhfInjected != 0 {
		return
	}

	var key Key
	switch kbInfo.vkCode {
	case vkControl, vkLControl, vkRControl:
		key = KeyModifier
	case vkC:
		key = KeyCopy
	default:
		return
	}

	var evt KeyEvent
	switch wParam {
	case wmKeydown, wmSyskeydown:
		evt = KeyEvent{Type: Pressed, Key: key}
	case wmKeyup, wmSyskeyup:
		evt = KeyEvent{Type: Released, Key: key}
	default:
		return
	}

	select {
	case l.events <- evt:
	default:
	}
}
