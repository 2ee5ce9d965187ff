//go:build darwin || linux

package platform

import (
	"context"
	"log/slog"
	"slices"
	"time"

	hook "github.com/robotn/gohook"
)

// libuiohook virtual key code for C
const vcC = 0x002E

// hookStartTimeout bounds how long Listen waits for libuiohook to report its state
const hookStartTimeout = time.Second

// HookKeyListener observes keys through libuiohook in listen-only mode
type HookKeyListener struct{}

// NewKeyListener creates a new key listener for macOS and Linux
func NewKeyListener() KeyListener {
	return &HookKeyListener{}
}

// Listen starts the global hook and streams normalized events until ctx is done
func (l *HookKeyListener) Listen(ctx context.Context) (<-chan KeyEvent, error) {
	raw := hook.Start()

	// libuiohook reports HookDisabled immediately when accessibility access is missing
	var first *hook.Event
	select {
	case ev, ok := <-raw:
		if !ok || ev.Kind == hook.HookDisabled {
			hook.End()
			return nil, ErrPermissionDenied
		}
		first = &ev
	case <-time.After(hookStartTimeout):
		slog.Warn("Key hook did not report its state, assuming it is running")
	case <-ctx.Done():
		hook.End()
		return nil, ctx.Err()
	}

	events := make(chan KeyEvent, 64)
	go func() {
		defer close(events)
		// A key pressed while the hook starts arrives before any state event
		if first != nil {
			forwardHookEvent(*first, events)
		}
		for {
			select {
			case <-ctx.Done():
				hook.End()
				return
			case ev, ok := <-raw:
				if !ok {
					return
				}
				forwardHookEvent(ev, events)
			}
		}
	}()

	return events, nil
}

// forwardHookEvent delivers ev if it is a key the detector cares about, never blocking
func forwardHookEvent(ev hook.Event, events chan<- KeyEvent) {
	kev, ok := translateHookEvent(ev)
	if !ok {
		return
	}
	select {
	case events <- kev:
	default:
	}
}

// translateHookEvent maps a libuiohook event to a KeyEvent.
// Physical presses arrive as KeyHold; KeyDown is the derived "typed" event and is ignored.
func translateHookEvent(ev hook.Event) (KeyEvent, bool) {
	var typ EventType
	switch ev.Kind {
	case hook.KeyHold:
		typ = Pressed
	case hook.KeyUp:
		typ = Released
	default:
		return KeyEvent{}, false
	}

	switch {
	case slices.Contains(modifierCodes, ev.Keycode):
		return KeyEvent{Type: typ, Key: KeyModifier}, true
	case ev.Keycode == vcC:
		return KeyEvent{Type: typ, Key: KeyCopy}, true
	default:
		return KeyEvent{}, false
	}
}
