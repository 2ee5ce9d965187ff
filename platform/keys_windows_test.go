//go:build windows

package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandleKeyEvent(t *testing.T) {
	l := &WindowsKeyListener{events: make(chan KeyEvent, 8)}

	l.handleKeyEvent(wmKeydown, &kbdllhookstruct{vkCode: vkLControl})
	l.handleKeyEvent(wmKeydown, &kbdllhookstruct{vkCode: vkC})
	l.handleKeyEvent(wmKeyup, &kbdllhookstruct{vkCode: vkC})
	l.handleKeyEvent(wmKeydown, &kbdllhookstruct{vkCode: vkV})
	l.handleKeyEvent(wmKeydown, &kbdllhookstruct{vkCode: vkC, flags: llkhfInjected})
	l.handleKeyEvent(wmSyskeyup, &kbdllhookstruct{vkCode: vkRControl})
	close(l.events)

	var got []KeyEvent
	for ev := range l.events {
		got = append(got, ev)
	}

	assert.Equal(t, []KeyEvent{
		{Type: Pressed, Key: KeyModifier},
		{Type: Pressed, Key: KeyCopy},
		{Type: Released, Key: KeyCopy},
		{Type: Released, Key: KeyModifier},
	}, got)
}
