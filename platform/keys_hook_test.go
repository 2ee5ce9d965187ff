//go:build darwin || linux

package platform

import (
	"testing"

	hook "github.com/robotn/gohook"
	"github.com/stretchr/testify/assert"
)

func TestTranslateHookEvent(t *testing.T) {
	mod := modifierCodes[0]

	tests := []struct {
		name string
		ev   hook.Event
		want KeyEvent
		ok   bool
	}{
		{"modifier press", hook.Event{Kind: hook.KeyHold, Keycode: mod}, KeyEvent{Type: Pressed, Key: KeyModifier}, true},
		{"modifier release", hook.Event{Kind: hook.KeyUp, Keycode: mod}, KeyEvent{Type: Released, Key: KeyModifier}, true},
		{"copy press", hook.Event{Kind: hook.KeyHold, Keycode: vcC}, KeyEvent{Type: Pressed, Key: KeyCopy}, true},
		{"copy release", hook.Event{Kind: hook.KeyUp, Keycode: vcC}, KeyEvent{Type: Released, Key: KeyCopy}, true},
		{"typed event ignored", hook.Event{Kind: hook.KeyDown, Keycode: vcC}, KeyEvent{}, false},
		{"other key ignored", hook.Event{Kind: hook.KeyHold, Keycode: 0x002F}, KeyEvent{}, false},
		{"mouse ignored", hook.Event{Kind: hook.MouseDown}, KeyEvent{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := translateHookEvent(tt.ev)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestForwardHookEvent(t *testing.T) {
	events := make(chan KeyEvent, 1)

	forwardHookEvent(hook.Event{Kind: hook.HookEnabled}, events)
	assert.Empty(t, events, "hook state events are not keys")

	forwardHookEvent(hook.Event{Kind: hook.KeyHold, Keycode: vcC}, events)
	assert.Equal(t, KeyEvent{Type: Pressed, Key: KeyCopy}, <-events)

	// A full channel drops instead of blocking the hook
	forwardHookEvent(hook.Event{Kind: hook.KeyHold, Keycode: vcC}, events)
	forwardHookEvent(hook.Event{Kind: hook.KeyUp, Keycode: vcC}, events)
	assert.Len(t, events, 1)
}
