// Package events defines the signals sent from the capture pipeline to user interfaces.
package events

import "sync"

// Event names
const (
	WindowShow          = "window-show"
	TranslationStart    = "translation-start"
	TranslationChunk    = "translation-chunk"
	TranslationProgress = "translation-progress"
	TranslationComplete = "translation-complete"
	TranslationError    = "translation-error"
	CredentialsMissing  = "credentials-missing"
	ModeChanged         = "mode-changed"
)

// Event is a named signal with an optional JSON-serializable payload
type Event struct {
	Name    string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// StartPayload accompanies translation-start
type StartPayload struct {
	DetectedLanguage string `json:"detected_language"`
	OriginalText     string `json:"original_text"`
	Mode             string `json:"mode"`
}

// ChunkPayload accompanies translation-chunk
type ChunkPayload struct {
	Text string `json:"text"`
}

// ProgressPayload accompanies translation-progress
type ProgressPayload struct {
	Percent int `json:"percent"`
}

// CompletePayload accompanies translation-complete
type CompletePayload struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language,omitempty"`
}

// ModePayload accompanies mode-changed
type ModePayload struct {
	Mode string `json:"mode"`
}

// ErrorPayload accompanies translation-error
type ErrorPayload struct {
	Message string `json:"message"`
}

// Emitter delivers events to a UI. Implementations must not block for long.
type Emitter interface {
	Emit(ev Event)
}

// EmitterFunc adapts a function to the Emitter interface
type EmitterFunc func(ev Event)

func (f EmitterFunc) Emit(ev Event) { f(ev) }

// Multi fans an event out to several emitters
type Multi []Emitter

func (m Multi) Emit(ev Event) {
	for _, e := range m {
		if e != nil {
			e.Emit(ev)
		}
	}
}

// Discard drops every event
var Discard Emitter = EmitterFunc(func(Event) {})

// Recorder keeps every emitted event; useful when no UI is attached
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Names returns the names of the recorded events in order
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.events))
	for i, ev := range r.events {
		names[i] = ev.Name
	}
	return names
}

// Last returns the most recent event with the given name
func (r *Recorder) Last(name string) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Name == name {
			return r.events[i], true
		}
	}
	return Event{}, false
}
