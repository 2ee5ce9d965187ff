package platform

import (
	"fmt"
	"sync"

	"golang.design/x/clipboard"
)

var (
	clipboardOnce sync.Once
	clipboardErr  error
)

// SystemClipboard implements the Clipboard interface on top of golang.design/x/clipboard
type SystemClipboard struct{}

// NewClipboard creates a new system clipboard instance
func NewClipboard() Clipboard {
	return &SystemClipboard{}
}

func (c *SystemClipboard) init() error {
	clipboardOnce.Do(func() {
		clipboardErr = clipboard.Init()
	})
	if clipboardErr != nil {
		return fmt.Errorf("%w: %v", ErrClipboardUnavailable, clipboardErr)
	}
	return nil
}

// Text retrieves text from the clipboard; empty when the clipboard holds no text
func (c *SystemClipboard) Text() (string, error) {
	if err := c.init(); err != nil {
		return "", err
	}
	return string(clipboard.Read(clipboard.FmtText)), nil
}

// SetText sets text to the clipboard
func (c *SystemClipboard) SetText(text string) error {
	if err := c.init(); err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

// Image retrieves PNG image data from the clipboard; nil when there is none
func (c *SystemClipboard) Image() ([]byte, error) {
	if err := c.init(); err != nil {
		return nil, err
	}
	return clipboard.Read(clipboard.FmtImage), nil
}

// SetImage writes PNG image data to the clipboard
func (c *SystemClipboard) SetImage(png []byte) error {
	if err := c.init(); err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtImage, png)
	return nil
}

// Clear empties the clipboard
func (c *SystemClipboard) Clear() error {
	if err := c.init(); err != nil {
		return err
	}
	return clearClipboard()
}
