// Package notify shows desktop notifications for pipeline failures.
package notify

import (
	"sync/atomic"

	"github.com/gen2brain/beeep"

	"markestedt/langra/events"
)

const (
	appName         = "Langra"
	maxMessageRunes = 200
)

// Notifier turns error events into desktop notifications
type Notifier struct {
	enabled atomic.Bool
	send    func(title, message string) error
}

// New creates a notifier backed by beeep
func New(enabled bool) *Notifier {
	n := &Notifier{
		send: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
	}
	n.enabled.Store(enabled)
	return n
}

// SetEnabled turns notifications on or off
func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled.Store(enabled)
}

// Emit implements events.Emitter; only failures produce a notification
func (n *Notifier) Emit(ev events.Event) {
	switch ev.Name {
	case events.TranslationError:
		msg := "Translation failed"
		if p, ok := ev.Payload.(events.ErrorPayload); ok && p.Message != "" {
			msg = p.Message
		}
		n.notify("Error", msg)
	case events.CredentialsMissing:
		n.notify("Setup required", "Add your API key in the Langra settings.")
	}
}

func (n *Notifier) notify(title, message string) {
	if !n.enabled.Load() {
		return
	}
	if r := []rune(message); len(r) > maxMessageRunes {
		message = string(r[:maxMessageRunes]) + "..."
	}
	// Notification failures are not actionable
	_ = n.send(appName+": "+title, message)
}
