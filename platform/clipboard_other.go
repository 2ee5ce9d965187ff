//go:build !windows

package platform

import "golang.design/x/clipboard"

// clearClipboard leaves an empty text item; neither pasteboard nor X11 selection
// offers a format-less empty state through the clipboard package.
func clearClipboard() error {
	clipboard.Write(clipboard.FmtText, nil)
	return nil
}
