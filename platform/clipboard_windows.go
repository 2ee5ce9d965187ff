//go:build windows

package platform

import (
	"fmt"
	"time"

	"golang.org/x/sys/windows"
)

var (
	user32         = windows.NewLazySystemDLL("user32.dll")
	kernel32       = windows.NewLazySystemDLL("kernel32.dll")
	openClipboard  = user32.NewProc("OpenClipboard")
	closeClipboard = user32.NewProc("CloseClipboard")
	emptyClipboard = user32.NewProc("EmptyClipboard")
)

// clearClipboard removes every format from the clipboard
func clearClipboard() error {
	if err := open(); err != nil {
		return err
	}
	defer closeClipboard.Call()

	r, _, err := emptyClipboard.Call()
	if r == 0 {
		return fmt.Errorf("%w: EmptyClipboard failed: %v", ErrClipboardUnavailable, err)
	}
	return nil
}

func open() error {
	// Another process may hold the clipboard briefly
	for i := 0; i < 10; i++ {
		r, _, _ := openClipboard.Call(0)
		if r != 0 {
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	return fmt.Errorf("%w: failed to open clipboard after retries", ErrClipboardUnavailable)
}
