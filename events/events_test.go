package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMulti_FansOut(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	m := Multi{a, nil, b}

	m.Emit(Event{Name: TranslationStart})
	m.Emit(Event{Name: TranslationComplete, Payload: CompletePayload{Text: "hi"}})

	assert.Equal(t, []string{TranslationStart, TranslationComplete}, a.Names())
	assert.Equal(t, a.Events(), b.Events())
}

func TestRecorder_Last(t *testing.T) {
	r := &Recorder{}
	r.Emit(Event{Name: TranslationChunk, Payload: ChunkPayload{Text: "a"}})
	r.Emit(Event{Name: TranslationChunk, Payload: ChunkPayload{Text: "b"}})

	ev, ok := r.Last(TranslationChunk)
	assert.True(t, ok)
	assert.Equal(t, ChunkPayload{Text: "b"}, ev.Payload)

	_, ok = r.Last(TranslationError)
	assert.False(t, ok)
}
