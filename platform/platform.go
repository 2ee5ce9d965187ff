package platform

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrPermissionDenied is returned when the key listener cannot be installed
	ErrPermissionDenied = errors.New("input monitoring permission denied")
	// ErrNoActiveWindow is returned when the OS reports no focused window
	ErrNoActiveWindow = errors.New("no active window")
	// ErrClipboardUnavailable is returned when the system clipboard cannot be accessed
	ErrClipboardUnavailable = errors.New("clipboard unavailable")
	// ErrInjectionIncomplete is returned when fewer synthetic events were delivered than requested
	ErrInjectionIncomplete = errors.New("synthetic input incomplete")
)

// Key is a logical key as seen by the gesture detector
type Key int

const (
	KeyOther Key = iota
	// KeyModifier is the activation modifier: Cmd on macOS, Ctrl elsewhere
	KeyModifier
	// KeyCopy is the copy letter (C)
	KeyCopy
)

func (k Key) String() string {
	switch k {
	case KeyModifier:
		return "modifier"
	case KeyCopy:
		return "copy"
	default:
		return "other"
	}
}

// EventType represents the type of key event
type EventType int

const (
	Pressed EventType = iota
	Released
)

// KeyEvent is a normalized, platform independent keyboard event
type KeyEvent struct {
	Type EventType
	Key  Key
}

// Window identifies a top-level window captured from the OS.
// Handle is opaque outside this package.
type Window struct {
	PID     int
	Handle  uintptr
	AppName string
	Title   string
}

func (w Window) String() string {
	return fmt.Sprintf("%s (pid %d)", w.AppName, w.PID)
}

// KeyListener observes system-wide key events without consuming them
type KeyListener interface {
	Listen(ctx context.Context) (<-chan KeyEvent, error)
}

// Injector simulates copy and paste chords at the OS input layer
type Injector interface {
	SendCopy() error
	SendPaste() error
}

// WindowFocus queries and restores the foreground window
type WindowFocus interface {
	ActiveWindow() (Window, error)
	// Activate brings the window's process to the foreground
	Activate(w Window) error
	// ActivateByName activates an application by its display name
	ActivateByName(appName string) error
}

// Clipboard provides clipboard access for text and images.
// Image data is PNG encoded.
type Clipboard interface {
	Text() (string, error)
	SetText(text string) error
	Image() ([]byte, error)
	SetImage(png []byte) error
	Clear() error
}

// OS bundles the platform capabilities the capture pipeline needs
type OS interface {
	KeyListener
	Injector
	WindowFocus
}

type osImpl struct {
	KeyListener
	Injector
	WindowFocus
}

// New creates the platform implementation for the current OS
func New() (OS, error) {
	injector, err := NewInjector()
	if err != nil {
		return nil, fmt.Errorf("failed to create injector: %w", err)
	}

	return &osImpl{
		KeyListener: NewKeyListener(),
		Injector:    injector,
		WindowFocus: NewWindowFocus(),
	}, nil
}
