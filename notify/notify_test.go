package notify

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markestedt/langra/events"
)

type sent struct{ title, message string }

func newTestNotifier(enabled bool) (*Notifier, *[]sent) {
	var got []sent
	n := New(enabled)
	n.send = func(title, message string) error {
		got = append(got, sent{title, message})
		return nil
	}
	return n, &got
}

func TestNotifier_ErrorEvents(t *testing.T) {
	n, got := newTestNotifier(true)

	n.Emit(events.Event{Name: events.TranslationError, Payload: events.ErrorPayload{Message: "No text selected"}})
	n.Emit(events.Event{Name: events.CredentialsMissing})

	assert.Equal(t, []sent{
		{"Langra: Error", "No text selected"},
		{"Langra: Setup required", "Add your API key in the Langra settings."},
	}, *got)
}

func TestNotifier_IgnoresProgressEvents(t *testing.T) {
	n, got := newTestNotifier(true)

	n.Emit(events.Event{Name: events.TranslationStart})
	n.Emit(events.Event{Name: events.TranslationChunk, Payload: events.ChunkPayload{Text: "x"}})
	n.Emit(events.Event{Name: events.TranslationComplete})

	assert.Empty(t, *got)
}

func TestNotifier_Disabled(t *testing.T) {
	n, got := newTestNotifier(false)
	n.Emit(events.Event{Name: events.TranslationError})
	assert.Empty(t, *got)

	n.SetEnabled(true)
	n.Emit(events.Event{Name: events.TranslationError})
	assert.Equal(t, []sent{{"Langra: Error", "Translation failed"}}, *got)
}

func TestNotifier_TruncatesOnRuneBoundary(t *testing.T) {
	n, got := newTestNotifier(true)

	long := strings.Repeat("ä", 250)
	n.Emit(events.Event{Name: events.TranslationError, Payload: events.ErrorPayload{Message: long}})

	require.Len(t, *got, 1)
	msg := (*got)[0].message
	assert.True(t, utf8.ValidString(msg))
	assert.Equal(t, strings.Repeat("ä", 200)+"...", msg)
}
